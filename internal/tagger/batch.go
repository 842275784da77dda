package tagger

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Input 是一条待打标的响应。
type Input struct {
	ResponseID uint
	Text       string
}

// Result 是一条响应的打标结果，Keys 已按得分排序。
type Result struct {
	ResponseID uint
	Keys       []string
}

// TagAll 并发为一批响应打标，结果顺序与输入一致。
// 每条响应独立计分，goroutine 之间只按下标写各自的结果槽位。
func (t *Tagger) TagAll(ctx context.Context, inputs []Input, maxTags, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Result{
				ResponseID: inputs[i].ResponseID,
				Keys:       t.Tag(inputs[i].Text, maxTags),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
