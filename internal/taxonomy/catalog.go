package taxonomy

import (
	"strings"

	"survey_insight_go/internal/model"
)

// canonicalTag 是内置关键词表对应的 dim_tags 行。TagID 顺序与关键词表顺序不同，二者各自独立。
type canonicalTag struct {
	id       uint
	key      string
	name     string
	category string
	priority string
}

var canonicalTags = []canonicalTag{
	{1, "behavioral_health_need", "Behavioral Health Need", "Clinical", "High"},
	{2, "leadership_development", "Leadership Development", "Professional", "High"},
	{3, "compensation_incentives", "Compensation & Incentives", "Financial", "High"},
	{4, "burnout_wellbeing", "Burnout & Wellbeing", "Wellness", "High"},
	{5, "workforce_challenges", "Workforce Challenges", "Workforce", "High"},
	{6, "training_development", "Training & Development", "Professional", "High"},
	{7, "housing_transportation", "Housing & Transportation", "Support", "Medium"},
	{8, "funding_grants", "Funding & Grants", "Financial", "Medium"},
	{9, "clinical_services", "Clinical Services", "Clinical", "Medium"},
	{10, "licensing_scope", "Licensing & Scope", "Regulatory", "Medium"},
	{11, "quality_safety", "Quality & Safety", "Clinical", "Medium"},
	{12, "childcare", "Childcare Support", "Support", "Medium"},
	{13, "rural_care", "Rural Care", "Geographic", "Medium"},
	{14, "clinical_competency", "Clinical Competency", "Clinical", "Medium"},
	{15, "allied_health", "Allied Health", "Profession", "Medium"},
}

// CanonicalTags 返回内置关键词表对应的 15 个一级标签，供 seed-tags 写入 dim_tags。
func CanonicalTags() []model.Tag {
	tags := make([]model.Tag, 0, len(canonicalTags))
	for _, c := range canonicalTags {
		tags = append(tags, model.Tag{
			TagID:          c.id,
			TagKey:         c.key,
			TagName:        c.name,
			TagCategory:    c.category,
			TagPriority:    c.priority,
			TagDescription: "Analysis tag for " + strings.ToLower(c.name),
			TagLevel:       model.TagLevelPrimary,
			IsActive:       true,
		})
	}
	return tags
}
