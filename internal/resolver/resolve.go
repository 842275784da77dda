// Package resolver 把三层标签来源合并成每条响应唯一确定的有效标签集合。
//
//	第 0 层：算法标签（bridge_response_tags）
//	第 1 层：AUTOMATIC 且有效的问题级映射，作用于该问题下的所有响应
//	第 2 层：针对单条响应的人工修正，按 (响应, 标签) 取最新一条
//
// 有效集合 = (第 0 层 ∪ 第 1 层) ∖ 最新为 REMOVE ∪ 最新为 ADD，再过滤掉停用或不存在的标签。
package resolver

import (
	"sort"

	"survey_insight_go/internal/model"
)

// OverrideKey 定位一个 (响应, 标签) 对。响应用复合键表示，与 ResponseID 的重新编号无关。
type OverrideKey struct {
	SurveyResponseNumber int
	QuestionID           uint
	TagID                uint
}

// Layers 是一次解析所需的全部输入快照。
type Layers struct {
	Algorithmic []model.AlgorithmicTagLink
	Mappings    []model.QuestionTagMapping
	Overrides   []model.ManualOverride
	// Tags 是标签目录，停用标签会被忽略
	Tags []model.Tag
}

// ResolvedResponse 是一条响应及其有效标签，标签按 TagLevel、TagName 排序。
type ResolvedResponse struct {
	Response model.ResponseKey
	Tags     []model.Tag
}

// TagIDs 返回有效标签 ID，顺序与 Tags 一致。
func (r ResolvedResponse) TagIDs() []uint {
	ids := make([]uint, 0, len(r.Tags))
	for _, t := range r.Tags {
		ids = append(ids, t.TagID)
	}
	return ids
}

// Has 判断有效集合是否包含某标签。
func (r ResolvedResponse) Has(tagID uint) bool {
	for _, t := range r.Tags {
		if t.TagID == tagID {
			return true
		}
	}
	return false
}

// LatestOverrides 为每个 (响应, 标签) 选出最新的一条有效修正。
// AppliedDate 较晚者胜出，相同时 OverrideID 较大者胜出；IsActive=false 的行视为不存在。
func LatestOverrides(overrides []model.ManualOverride) map[OverrideKey]model.ManualOverride {
	latest := make(map[OverrideKey]model.ManualOverride, len(overrides))
	for _, o := range overrides {
		if !o.IsActive || !o.Action.Valid() {
			continue
		}
		key := OverrideKey{SurveyResponseNumber: o.SurveyResponseNumber, QuestionID: o.QuestionID, TagID: o.TagID}
		cur, ok := latest[key]
		if !ok || newer(o, cur) {
			latest[key] = o
		}
	}
	return latest
}

func newer(a, b model.ManualOverride) bool {
	if a.AppliedDate.Equal(b.AppliedDate) {
		return a.OverrideID > b.OverrideID
	}
	return a.AppliedDate.After(b.AppliedDate)
}

// Resolve 对一批响应计算有效标签。纯函数：不访问存储，输入相同则输出相同。
// 返回顺序与 responses 一致。
func Resolve(responses []model.ResponseKey, layers Layers) []ResolvedResponse {
	active := make(map[uint]model.Tag, len(layers.Tags))
	for _, t := range layers.Tags {
		if t.IsActive {
			active[t.TagID] = t
		}
	}

	algorithmic := make(map[uint][]uint)
	for _, l := range layers.Algorithmic {
		algorithmic[l.ResponseID] = append(algorithmic[l.ResponseID], l.TagID)
	}

	mapped := make(map[uint][]uint)
	for _, m := range layers.Mappings {
		if m.AssignmentType != model.AssignmentAutomatic || !m.IsActive {
			continue
		}
		mapped[m.QuestionID] = append(mapped[m.QuestionID], m.TagID)
	}

	// 按响应复合键归组最新修正，避免每条响应都扫描全部修正
	type responseRef struct {
		surveyResponseNumber int
		questionID           uint
	}
	latestByResponse := make(map[responseRef][]model.ManualOverride)
	for key, o := range LatestOverrides(layers.Overrides) {
		ref := responseRef{key.SurveyResponseNumber, key.QuestionID}
		latestByResponse[ref] = append(latestByResponse[ref], o)
	}

	out := make([]ResolvedResponse, 0, len(responses))
	for _, resp := range responses {
		set := make(map[uint]struct{})
		for _, id := range algorithmic[resp.ResponseID] {
			set[id] = struct{}{}
		}
		for _, id := range mapped[resp.QuestionID] {
			set[id] = struct{}{}
		}
		for _, o := range latestByResponse[responseRef{resp.SurveyResponseNumber, resp.QuestionID}] {
			switch o.Action {
			case model.OverrideRemove:
				delete(set, o.TagID)
			case model.OverrideAdd:
				set[o.TagID] = struct{}{}
			}
		}

		tags := make([]model.Tag, 0, len(set))
		for id := range set {
			if t, ok := active[id]; ok {
				tags = append(tags, t)
			}
		}
		SortTags(tags)
		out = append(out, ResolvedResponse{Response: resp, Tags: tags})
	}
	return out
}

// SortTags 按 TagLevel、TagName 排序，名称相同时按 TagID 保证稳定。
func SortTags(tags []model.Tag) {
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].TagLevel != tags[j].TagLevel {
			return tags[i].TagLevel < tags[j].TagLevel
		}
		if tags[i].TagName != tags[j].TagName {
			return tags[i].TagName < tags[j].TagName
		}
		return tags[i].TagID < tags[j].TagID
	})
}

// Count 统计每个标签出现在多少条不同响应的有效集合里。
func Count(resolved []ResolvedResponse) map[uint]int {
	counts := make(map[uint]int)
	seen := make(map[uint]struct{}, len(resolved))
	for _, r := range resolved {
		if _, dup := seen[r.Response.ResponseID]; dup {
			continue
		}
		seen[r.Response.ResponseID] = struct{}{}
		for _, t := range r.Tags {
			counts[t.TagID]++
		}
	}
	return counts
}
