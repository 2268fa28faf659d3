package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sora-rara/bracu-student-hub-sub004/internal/model"
	pkgerrors "github.com/sora-rara/bracu-student-hub-sub004/pkg/errors"
)

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	listErr error
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	if c, ok := m.courses[code]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Course
	for _, c := range m.courses {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCourseRepo) Upsert(_ context.Context, courses []model.Course) error {
	for i := range courses {
		c := courses[i]
		m.courses[c.CourseCode] = &c
	}
	return nil
}

// addCourse 注入一门课程（测试辅助）
func (m *mockCourseRepo) addCourse(code, name string, credits int, hard, soft []string) {
	m.courses[code] = &model.Course{
		CourseCode:  code,
		Name:        name,
		Credits:     credits,
		Category:    model.CategoryProgramCore,
		HardPrereqs: model.StringArray(hard),
		SoftPrereqs: model.StringArray(soft),
	}
}

// ── Mock PlanRepository ──

type mockPlanRepo struct {
	plans      map[string][]model.PlannedTerm
	replaceErr error
	getErr     error
	seq        int
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: make(map[string][]model.PlannedTerm)}
}

func (m *mockPlanRepo) GetByStudent(_ context.Context, studentID string) ([]model.PlannedTerm, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.plans[studentID], nil
}

func (m *mockPlanRepo) Replace(_ context.Context, studentID string, terms []model.PlannedTerm) ([]model.PlannedTerm, error) {
	if m.replaceErr != nil {
		return nil, m.replaceErr
	}
	saved := make([]model.PlannedTerm, len(terms))
	for i, term := range terms {
		if term.TermID == "" || model.TermID(term.TermID).IsDraft() {
			m.seq++
			term.TermID = newMockUUID(m.seq)
		}
		term.StudentID = studentID
		saved[i] = term
	}
	m.plans[studentID] = saved
	return saved, nil
}

// newMockUUID 生成形如 UUID 的确定性标识
func newMockUUID(seq int) string {
	const hex = "0123456789abcdef"
	return "00000000-0000-4000-8000-0000000000" + string(hex[(seq/16)%16]) + string(hex[seq%16])
}

// ── Mock RecordClient ──

type mockRecordClient struct {
	records     map[string][]model.CompletedCourse
	unavailable bool
}

func newMockRecordClient() *mockRecordClient {
	return &mockRecordClient{records: make(map[string][]model.CompletedCourse)}
}

func (m *mockRecordClient) GetCompletedCourses(_ context.Context, studentID string) ([]model.CompletedCourse, error) {
	if m.unavailable {
		return nil, fmt.Errorf("上游超时: %w", pkgerrors.ErrDataUnavailable)
	}
	return m.records[studentID], nil
}

// setCompleted 注入学生的已修课程（测试辅助）
func (m *mockRecordClient) setCompleted(studentID string, codes ...string) {
	courses := make([]model.CompletedCourse, 0, len(codes))
	for _, code := range codes {
		courses = append(courses, model.CompletedCourse{CourseCode: code, Grade: "A", Term: "Fall 2024"})
	}
	m.records[studentID] = courses
}
