package service

import (
	"context"
	"strings"

	"survey_insight_go/pkg/log"
)

// Invalidator 在写入修正或映射后让聚合缓存失效，cache.CountCache 满足该接口。
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

func normalizeActor(actor string) string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return "system"
	}
	return actor
}

func invalidate(ctx context.Context, inv Invalidator, op string) {
	if inv == nil {
		return
	}
	if err := inv.Invalidate(ctx); err != nil {
		log.Warnf("%s: invalidate count cache: %v", op, err)
	}
}
