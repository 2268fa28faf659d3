package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/sora-rara/bracu-student-hub-sub004/config"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/dto"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/repository"
	pkgerrors "github.com/sora-rara/bracu-student-hub-sub004/pkg/errors"
)

// ── 测试辅助 ──

func testPlannerConfig() *config.PlannerConfig {
	return &config.PlannerConfig{
		DefaultCreditCap:    12,
		MinCreditCap:        3,
		MaxCreditCap:        21,
		OverloadGrace:       3,
		BottleneckDepth:     3,
		SimulationHorizon:   20,
		DefaultCourseCredit: 3,
	}
}

type eligibilityFixture struct {
	svc     EligibilityService
	plan    PlanService
	courses *mockCourseRepo
	record  *mockRecordClient
}

func setupTestEligibilityService() *eligibilityFixture {
	courseRepo := newMockCourseRepo()
	repo := &repository.Repository{
		Course: courseRepo,
		Plan:   newMockPlanRepo(),
	}
	record := newMockRecordClient()
	plan := NewPlanService(repo, testPlannerConfig(), zap.NewNop())
	svc := NewEligibilityService(repo, record, plan, zap.NewNop())
	return &eligibilityFixture{svc: svc, plan: plan, courses: courseRepo, record: record}
}

// seedChain 注入 CSE110 → CSE111 → CSE220 先修链与一门无先修课程
func (f *eligibilityFixture) seedChain() {
	f.courses.addCourse("CSE110", "程序设计", 3, nil, nil)
	f.courses.addCourse("CSE111", "程序设计II", 3, []string{"CSE110"}, nil)
	f.courses.addCourse("CSE220", "数据结构", 3, []string{"CSE111"}, nil)
	f.courses.addCourse("MAT110", "微积分", 3, nil, []string{"MAT092"})
}

// ── Resolve 测试 ──

func TestEligibilityService_Resolve_PrereqChain(t *testing.T) {
	f := setupTestEligibilityService()
	f.seedChain()
	f.record.setCompleted("S001", "CSE110")

	statuses, err := f.svc.Resolve(context.Background(), "S001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}

	// CSE110 已修：可重修
	if !statuses["CSE110"].IsCompleted || !statuses["CSE110"].CanTake {
		t.Error("已修课程应 IsCompleted=true 且 CanTake=true")
	}
	// CSE111 先修已满足
	if !statuses["CSE111"].CanTake {
		t.Error("CSE111 的硬性先修 CSE110 已修，应 CanTake=true")
	}
	// CSE220 先修链未满足
	s220 := statuses["CSE220"]
	if s220.CanTake {
		t.Error("CSE220 的硬性先修 CSE111 未修，应 CanTake=false")
	}
	if len(s220.MissingHard) != 1 || s220.MissingHard[0] != "CSE111" {
		t.Errorf("CSE220 期望缺失 [CSE111]，实际: %v", s220.MissingHard)
	}
}

func TestEligibilityService_Resolve_NoPrereqAlwaysTakable(t *testing.T) {
	f := setupTestEligibilityService()
	f.seedChain()
	// 学业记录为空

	statuses, err := f.svc.Resolve(context.Background(), "S001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if !statuses["CSE110"].CanTake {
		t.Error("无硬性先修的课程应始终 CanTake=true")
	}
	if !statuses["MAT110"].CanTake {
		t.Error("仅缺推荐先修的课程应 CanTake=true")
	}
	if len(statuses["MAT110"].MissingSoft) != 1 || statuses["MAT110"].MissingSoft[0] != "MAT092" {
		t.Errorf("MAT110 期望缺失推荐先修 [MAT092]，实际: %v", statuses["MAT110"].MissingSoft)
	}
}

func TestEligibilityService_Resolve_CompletedImpliesCanTake(t *testing.T) {
	f := setupTestEligibilityService()
	// 课程的先修本身未修，但课程已修（转学分等场景）：仍可重修
	f.courses.addCourse("CSE220", "数据结构", 3, []string{"CSE111"}, nil)
	f.record.setCompleted("S001", "CSE220")

	statuses, err := f.svc.Resolve(context.Background(), "S001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	s := statuses["CSE220"]
	if !s.IsCompleted {
		t.Fatal("CSE220 应标记为已修")
	}
	if !s.CanTake {
		t.Error("不变量被破坏：IsCompleted=true 时 CanTake 必须为 true")
	}
}

func TestEligibilityService_Resolve_RecordUnavailable(t *testing.T) {
	f := setupTestEligibilityService()
	f.seedChain()
	f.record.unavailable = true

	statuses, err := f.svc.Resolve(context.Background(), "S001")
	if !errors.Is(err, pkgerrors.ErrDataUnavailable) {
		t.Errorf("期望 ErrDataUnavailable，实际: %v", err)
	}
	if statuses != nil {
		t.Error("数据不可用时应返回 nil 而非空集合，两者语义不同")
	}
}

func TestEligibilityService_Resolve_CatalogUnavailable(t *testing.T) {
	f := setupTestEligibilityService()
	f.courses.listErr = errors.New("connection refused")

	_, err := f.svc.Resolve(context.Background(), "S001")
	if !errors.Is(err, pkgerrors.ErrDataUnavailable) {
		t.Errorf("目录不可读时期望 ErrDataUnavailable，实际: %v", err)
	}
}

func TestEligibilityService_Resolve_MarksPlannedCourses(t *testing.T) {
	f := setupTestEligibilityService()
	f.seedChain()

	ctx := context.Background()
	term, err := f.plan.AddTerm(ctx, "S001", &dto.AddTermRequest{Season: "Spring", Year: 2026})
	if err != nil {
		t.Fatalf("AddTerm 应成功: %v", err)
	}
	if _, err := f.plan.PlaceCourse(ctx, "S001", term.TermID, &dto.PlaceCourseRequest{CourseCode: "CSE110"}, true); err != nil {
		t.Fatalf("PlaceCourse 应成功: %v", err)
	}

	statuses, err := f.svc.Resolve(ctx, "S001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if !statuses["CSE110"].IsPlanned {
		t.Error("已安排进计划的课程应 IsPlanned=true")
	}
	if statuses["CSE111"].IsPlanned {
		t.Error("未安排的课程不应 IsPlanned")
	}
}

// ── CheckPrerequisites 测试 ──

func TestEligibilityService_CheckPrerequisites(t *testing.T) {
	f := setupTestEligibilityService()
	f.seedChain()
	f.record.setCompleted("S001", "CSE110")

	result, err := f.svc.CheckPrerequisites(context.Background(), "S001", "cse 220")
	if err != nil {
		t.Fatalf("CheckPrerequisites 应成功: %v", err)
	}
	if len(result.MissingHard) != 1 || result.MissingHard[0] != "CSE111" {
		t.Errorf("期望缺失 [CSE111]，实际: %v", result.MissingHard)
	}
}

func TestEligibilityService_CheckPrerequisites_UnknownCourse(t *testing.T) {
	f := setupTestEligibilityService()

	_, err := f.svc.CheckPrerequisites(context.Background(), "S001", "CSE999")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

// ── RemainingCourses 测试 ──

func TestEligibilityService_RemainingCourses(t *testing.T) {
	f := setupTestEligibilityService()
	f.seedChain()
	f.record.setCompleted("S001", "CSE110")

	ctx := context.Background()
	term, _ := f.plan.AddTerm(ctx, "S001", &dto.AddTermRequest{Season: "Spring", Year: 2026})
	if _, err := f.plan.PlaceCourse(ctx, "S001", term.TermID, &dto.PlaceCourseRequest{CourseCode: "CSE111"}, true); err != nil {
		t.Fatalf("PlaceCourse 应成功: %v", err)
	}

	remaining, err := f.svc.RemainingCourses(ctx, "S001")
	if err != nil {
		t.Fatalf("RemainingCourses 应成功: %v", err)
	}

	// 已修（CSE110）与已规划（CSE111）都不应出现；结果按代码排序
	if len(remaining) != 2 {
		t.Fatalf("期望剩余 2 门课程，实际 %d: %+v", len(remaining), remaining)
	}
	if remaining[0].CourseCode != "CSE220" || remaining[1].CourseCode != "MAT110" {
		t.Errorf("期望 [CSE220 MAT110]，实际: [%s %s]", remaining[0].CourseCode, remaining[1].CourseCode)
	}
	if remaining[0].CanTake {
		t.Error("CSE220 先修未满足，CanTake 应为 false")
	}
}
