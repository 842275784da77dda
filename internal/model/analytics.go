package model

// ResponseStats 是事实表的整体统计。
type ResponseStats struct {
	TotalResponses    int64   `json:"total_responses"`
	UniqueRespondents int64   `json:"unique_respondents"`
	AvgWordCount      float64 `json:"avg_word_count"`
	AvgResponseLength float64 `json:"avg_response_length"`
}

// CategoryCount 是按某个维度分组的计数。
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// TagDistribution 是某问题下单个标签的有效响应数。
type TagDistribution struct {
	TagID       uint   `json:"TagID"`
	TagName     string `json:"TagName"`
	TagCategory string `json:"TagCategory"`
	TagCount    int    `json:"TagCount"`
}

type TagResponseCount struct {
	TagID         uint   `json:"TagID"`
	TagName       string `json:"TagName"`
	ResponseCount int    `json:"ResponseCount"`
}

type RoleResponseCount struct {
	RoleCategory  string `json:"RoleCategory"`
	ResponseCount int    `json:"ResponseCount"`
}

// Analytics 是 /api/analytics 的完整返回，所有标签计数都基于有效标签。
type Analytics struct {
	Overview             ResponseStats                  `json:"overview"`
	RoleCategoryAnalysis []CategoryCount                `json:"role_category_analysis"`
	TagCategoryAnalysis  []CategoryCount                `json:"tag_category_analysis"`
	QuestionTypeAnalysis []CategoryCount                `json:"question_type_analysis"`
	PriorityAreas        []TagCount                     `json:"priority_areas"`
	FilteredTagAnalysis  map[string][]TagResponseCount  `json:"filtered_tag_analysis"`
	TagRoleDistribution  map[string][]RoleResponseCount `json:"tag_role_distribution"`
}
