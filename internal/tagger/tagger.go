// Package tagger 实现基于关键词计分的自由文本打标。
//
// 匹配是对小写全文做子串包含判断，不分词。因此 "pay" 会命中 "company"，
// 这是已知的精度限制，为了与已打标语料保持一致而保留。
package tagger

import (
	"sort"
	"strings"

	"survey_insight_go/internal/taxonomy"
)

// DefaultMaxTags 是每条响应最多保留的标签数。
const DefaultMaxTags = 4

const (
	primaryWeight   = 3
	secondaryWeight = 2
	contextWeight   = 1
	negativeWeight  = -2
)

// Match 是一个命中的标签及其得分。
type Match struct {
	Key   string `json:"key"`
	Score int    `json:"score"`
}

// Tagger 持有注入的关键词表，本身无可变状态，可以被多个 goroutine 并发使用。
type Tagger struct {
	taxonomy *taxonomy.Taxonomy
	maxTags  int
}

// New 创建 Tagger。maxTags <= 0 时使用 DefaultMaxTags。
func New(tx *taxonomy.Taxonomy, maxTags int) *Tagger {
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}
	return &Tagger{taxonomy: tx, maxTags: maxTags}
}

// MaxTags 返回构造时配置的默认上限。
func (t *Tagger) MaxTags() int {
	return t.maxTags
}

// TaxonomyVersion 返回当前关键词表版本。
func (t *Tagger) TaxonomyVersion() string {
	if t.taxonomy == nil {
		return ""
	}
	return t.taxonomy.Version
}

// Score 返回所有达到阈值的标签，按得分降序；同分保持关键词表声明顺序。
// 空文本或纯空白文本返回空切片。
func (t *Tagger) Score(text string) []Match {
	matches := []Match{}
	if t.taxonomy == nil || strings.TrimSpace(text) == "" {
		return matches
	}

	lowered := strings.ToLower(text)
	for _, entry := range t.taxonomy.Entries {
		score := scoreEntry(lowered, entry)
		if score >= entry.MinScore {
			matches = append(matches, Match{Key: entry.Key, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Tag 返回得分最高的至多 maxTags 个标签 key。maxTags <= 0 时使用构造时的默认值。
func (t *Tagger) Tag(text string, maxTags int) []string {
	if maxTags <= 0 {
		maxTags = t.maxTags
	}
	matches := t.Score(text)
	if len(matches) > maxTags {
		matches = matches[:maxTags]
	}

	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, m.Key)
	}
	return keys
}

// scoreEntry 每个关键词只计一次，与出现次数无关。得分可以为负。
func scoreEntry(text string, entry taxonomy.Entry) int {
	score := 0
	score += primaryWeight * countContained(text, entry.Primary)
	score += secondaryWeight * countContained(text, entry.Secondary)
	score += contextWeight * countContained(text, entry.Context)
	score += negativeWeight * countContained(text, entry.Negative)
	return score
}

func countContained(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}
