package resolver

import (
	"context"
	"fmt"

	"survey_insight_go/internal/cache"
	"survey_insight_go/internal/model"
	"survey_insight_go/pkg/log"
)

type cachedResolver struct {
	next  Resolver
	cache cache.CountCache
}

// NewCachedResolver 给 EffectiveTagCounts 加一层计数缓存，其余方法直接透传。
// 缓存读写失败只记日志，回落到实时计算。
func NewCachedResolver(next Resolver, c cache.CountCache) Resolver {
	if c == nil {
		return next
	}
	return &cachedResolver{next: next, cache: c}
}

func (r *cachedResolver) EffectiveTags(ctx context.Context, responseID uint) ([]model.Tag, error) {
	return r.next.EffectiveTags(ctx, responseID)
}

func (r *cachedResolver) EffectiveTagSets(ctx context.Context, filter model.ResponseFilter) ([]ResolvedResponse, error) {
	return r.next.EffectiveTagSets(ctx, filter)
}

func (r *cachedResolver) EffectiveTagCounts(ctx context.Context, filter model.ResponseFilter) (map[uint]int, error) {
	scope := FilterScope(filter)
	gen, err := r.cache.Generation(ctx)
	if err != nil {
		log.Warnf("cachedResolver.EffectiveTagCounts: %v", err)
		return r.next.EffectiveTagCounts(ctx, filter)
	}

	counts, ok, err := r.cache.Get(ctx, gen, scope)
	if err != nil {
		log.Warnf("cachedResolver.EffectiveTagCounts: cache get %s: %v", scope, err)
	} else if ok {
		return counts, nil
	}

	counts, err = r.next.EffectiveTagCounts(ctx, filter)
	if err != nil {
		return nil, err
	}
	// 必须用计算前读到的代际写回
	if err := r.cache.Set(ctx, gen, scope, counts); err != nil {
		log.Warnf("cachedResolver.EffectiveTagCounts: cache set %s: %v", scope, err)
	}
	return counts, nil
}

// FilterScope 把过滤条件编码成缓存键的一部分，零值过滤为 "all"。
func FilterScope(filter model.ResponseFilter) string {
	scope := "all"
	if filter.ResponseID != nil {
		scope += fmt.Sprintf(":r%d", *filter.ResponseID)
	}
	if filter.QuestionID != nil {
		scope += fmt.Sprintf(":q%d", *filter.QuestionID)
	}
	if filter.RoleCategory != "" {
		scope += ":role=" + filter.RoleCategory
	}
	if filter.ContentOnly {
		scope += ":content"
	}
	return scope
}
