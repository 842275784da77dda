// Package taxonomy 定义打标算法使用的关键词表。
// 关键词表是带版本的配置数据而不是代码：默认内置合并版 15 条，也可以从 YAML 文件替换。
// 更换关键词表后，已经写入 bridge_response_tags 的算法标签全部失效，需要重新执行 retag。
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_taxonomy.yaml
var defaultTaxonomyYAML []byte

// ErrInvalidTaxonomy 表示关键词表结构不合法。
var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

// Entry 是一条标签定义。四类关键词按 +3 / +2 / +1 / -2 计分，总分不低于 MinScore 才命中。
type Entry struct {
	Key       string   `yaml:"key"`
	Primary   []string `yaml:"primary"`
	Secondary []string `yaml:"secondary"`
	Context   []string `yaml:"context"`
	Negative  []string `yaml:"negative"`
	MinScore  int      `yaml:"min_score"`
}

// Taxonomy 是有序的标签定义列表，顺序决定同分时的排名。
type Taxonomy struct {
	Version string  `yaml:"version"`
	Entries []Entry `yaml:"entries"`
}

// Parse 解析 YAML 并做规范化（关键词转小写、去首尾空白）与校验。
func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaxonomy, err)
	}
	t.normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadFile 从磁盘读取关键词表。
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	return Parse(data)
}

// Load 在 path 为空时返回内置关键词表，否则读取文件。
func Load(path string) (*Taxonomy, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return LoadFile(path)
}

// Default 返回内置的合并版关键词表，每次调用都返回新实例，调用方可以放心修改。
func Default() (*Taxonomy, error) {
	return Parse(defaultTaxonomyYAML)
}

// Validate 检查：key 非空且唯一、MinScore >= 1、每条至少有一个正向关键词。
func (t *Taxonomy) Validate() error {
	if t == nil || len(t.Entries) == 0 {
		return fmt.Errorf("%w: no entries", ErrInvalidTaxonomy)
	}
	seen := make(map[string]struct{}, len(t.Entries))
	for i, e := range t.Entries {
		if e.Key == "" {
			return fmt.Errorf("%w: entry %d has empty key", ErrInvalidTaxonomy, i)
		}
		if _, ok := seen[e.Key]; ok {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidTaxonomy, e.Key)
		}
		seen[e.Key] = struct{}{}
		if e.MinScore < 1 {
			return fmt.Errorf("%w: entry %q min_score must be >= 1", ErrInvalidTaxonomy, e.Key)
		}
		if len(e.Primary)+len(e.Secondary)+len(e.Context) == 0 {
			return fmt.Errorf("%w: entry %q has no keywords", ErrInvalidTaxonomy, e.Key)
		}
	}
	return nil
}

// Keys 按声明顺序返回全部 key。
func (t *Taxonomy) Keys() []string {
	keys := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Lookup 按 key 查找标签定义。
func (t *Taxonomy) Lookup(key string) (Entry, bool) {
	for _, e := range t.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

func (t *Taxonomy) normalize() {
	t.Version = strings.TrimSpace(t.Version)
	for i := range t.Entries {
		e := &t.Entries[i]
		e.Key = strings.TrimSpace(e.Key)
		e.Primary = normalizeKeywords(e.Primary)
		e.Secondary = normalizeKeywords(e.Secondary)
		e.Context = normalizeKeywords(e.Context)
		e.Negative = normalizeKeywords(e.Negative)
	}
}

// normalizeKeywords 转小写并丢弃空串。同一列表里重复的关键词保留，和原始语料的计分保持一致。
func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		out = append(out, k)
	}
	return out
}
