package repository

import (
	"survey_insight_go/internal/model"

	"gorm.io/gorm"
)

// 聚合查询统一使用的别名：r = fact_survey_responses，ro = dim_roles。
const roleJoin = "LEFT JOIN dim_roles AS ro ON ro.role_id = r.role_id"

// applyResponseFilter 把 ResponseFilter 翻译成 WHERE 条件。
// 调用方必须已经把 fact_survey_responses 以别名 r 引入查询，并 LEFT JOIN 了 dim_roles ro。
func applyResponseFilter(tx *gorm.DB, filter model.ResponseFilter) *gorm.DB {
	if filter.ResponseID != nil {
		tx = tx.Where("r.response_id = ?", *filter.ResponseID)
	}
	if filter.QuestionID != nil {
		tx = tx.Where("r.question_id = ?", *filter.QuestionID)
	}
	if filter.RoleCategory != "" {
		tx = tx.Where("ro.role_category = ?", filter.RoleCategory)
	}
	if filter.ContentOnly {
		tx = tx.Where("r.has_response = ?", true)
	}
	return tx
}
