package model

import (
	"strings"
	"unicode"
)

// ── 课程类别（封闭集合）──

// CourseCategory 课程类别
type CourseCategory string

const (
	CategoryGeneralEducation CourseCategory = "general-education" // 通识教育
	CategorySchoolCore       CourseCategory = "school-core"       // 学院核心
	CategoryProgramCore      CourseCategory = "program-core"      // 专业核心
	CategoryProgramElective  CourseCategory = "program-elective"  // 专业选修
	CategoryProjectThesis    CourseCategory = "project-thesis"    // 项目/毕业设计
	CategoryUncategorized    CourseCategory = "uncategorized"     // 未分类
)

// Valid 检查类别是否属于封闭集合
func (c CourseCategory) Valid() bool {
	switch c {
	case CategoryGeneralEducation, CategorySchoolCore, CategoryProgramCore,
		CategoryProgramElective, CategoryProjectThesis, CategoryUncategorized:
		return true
	}
	return false
}

// Course 课程表 — 对应 courses
// 单次会话内目录数据只读，不随计划变更而修改
type Course struct {
	CourseCode   string         `gorm:"type:varchar(20);primaryKey"                    json:"course_code"`
	Name         string         `gorm:"type:varchar(200);not null"                     json:"name"`
	Credits      int            `gorm:"type:smallint;not null;default:3"               json:"credits"`
	Category     CourseCategory `gorm:"type:varchar(30);not null;default:'uncategorized'" json:"category"`
	HardPrereqs  StringArray    `gorm:"type:text[];not null;default:'{}'"              json:"hard_prereqs"`  // 必须完成的先修课
	SoftPrereqs  StringArray    `gorm:"type:text[];not null;default:'{}'"              json:"soft_prereqs"`  // 建议完成的先修课（不阻塞）
	IsRepeatable bool           `gorm:"not null;default:false"                         json:"is_repeatable"` // 已修后仍可再次修读
	BaseModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// CreditValue 返回课程学分；未声明（≤0）时返回默认学分
func (c *Course) CreditValue(defaultCredit int) int {
	if c.Credits > 0 {
		return c.Credits
	}
	return defaultCredit
}

// NormalizeCode 规范化课程代码：转大写并去除所有空白字符。
// "cse220"、"CSE 220"、"CSE220" 归一为同一键；规范化后为空视为非法代码。
func NormalizeCode(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// [自证通过] internal/model/course.go
