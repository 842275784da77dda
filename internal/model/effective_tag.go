package model

// 有效标签的来源层。
const (
	SourceAlgorithmic     = "algorithmic"
	SourceQuestionMapping = "question_mapping"
	SourceManual          = "manual"
)

// EffectiveTag 是带来源说明的有效标签。
type EffectiveTag struct {
	Tag
	Sources       []string      `json:"Sources"`
	OverrideState OverrideState `json:"OverrideState"`
}

// ResponseTagDetail 是 /api/responses/:id/tags 的返回。
// Removed 列出底层来源给出、但被人工 REMOVE 掉的标签。
type ResponseTagDetail struct {
	ResponseID           uint           `json:"ResponseID"`
	SurveyResponseNumber int            `json:"SurveyResponseNumber"`
	QuestionID           uint           `json:"QuestionID"`
	Tags                 []EffectiveTag `json:"Tags"`
	Removed              []EffectiveTag `json:"Removed"`
}
