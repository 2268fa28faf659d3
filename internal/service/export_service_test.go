package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/sora-rara/bracu-student-hub-sub004/internal/dto"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/repository"
)

// ── 测试辅助 ──

type exportFixture struct {
	svc     ExportService
	plan    PlanService
	courses *mockCourseRepo
	record  *mockRecordClient
}

func setupTestExportService() *exportFixture {
	courseRepo := newMockCourseRepo()
	repo := &repository.Repository{
		Course: courseRepo,
		Plan:   newMockPlanRepo(),
	}
	record := newMockRecordClient()
	cfg := testPlannerConfig()
	plan := NewPlanService(repo, cfg, zap.NewNop())
	proj := NewProjectionService(repo, record, plan, cfg, zap.NewNop())
	svc := NewExportService(repo, plan, proj, cfg, zap.NewNop())
	return &exportFixture{svc: svc, plan: plan, courses: courseRepo, record: record}
}

// ── ExportPlanExcel 测试 ──

func TestExportService_ExportPlanExcel_EmptyPlan(t *testing.T) {
	f := setupTestExportService()

	_, _, err := f.svc.ExportPlanExcel(context.Background(), "S001")
	if !errors.Is(err, ErrExportEmptyPlan) {
		t.Errorf("空计划期望 ErrExportEmptyPlan，实际: %v", err)
	}
}

func TestExportService_ExportPlanExcel_Success(t *testing.T) {
	f := setupTestExportService()
	f.courses.addCourse("CSE110", "程序设计", 3, nil, nil)

	ctx := context.Background()
	term, _ := f.plan.AddTerm(ctx, "S001", &dto.AddTermRequest{Season: "Spring", Year: 2026})
	if _, err := f.plan.PlaceCourse(ctx, "S001", term.TermID, &dto.PlaceCourseRequest{CourseCode: "CSE110"}, true); err != nil {
		t.Fatalf("PlaceCourse 应成功: %v", err)
	}

	buf, filename, err := f.svc.ExportPlanExcel(ctx, "S001")
	if err != nil {
		t.Fatalf("ExportPlanExcel 应成功: %v", err)
	}
	if buf == nil || buf.Len() == 0 {
		t.Error("导出内容不应为空")
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应以 .xlsx 结尾，实际: %s", filename)
	}
}

// ── ExportTimelineICS 测试 ──

func TestExportService_ExportTimelineICS_Success(t *testing.T) {
	f := setupTestExportService()
	f.courses.addCourse("CSE110", "程序设计", 3, nil, nil)
	f.courses.addCourse("MAT110", "微积分", 3, nil, nil)

	ctx := context.Background()
	term, _ := f.plan.AddTerm(ctx, "S001", &dto.AddTermRequest{Season: "Spring", Year: 2026})
	f.plan.PlaceCourse(ctx, "S001", term.TermID, &dto.PlaceCourseRequest{CourseCode: "CSE110"}, true)

	buf, filename, err := f.svc.ExportTimelineICS(ctx, "S001")
	if err != nil {
		t.Fatalf("ExportTimelineICS 应成功: %v", err)
	}
	content := buf.String()
	if !strings.Contains(content, "BEGIN:VCALENDAR") {
		t.Error("输出应为 iCalendar 格式")
	}
	if !strings.Contains(content, "Spring 2026") {
		t.Error("时间线应包含已规划学期的里程碑事件")
	}
	// 剩余 MAT110 → 推演可用 → 追加毕业里程碑
	if !strings.Contains(content, "预计毕业") {
		t.Error("时间线应包含毕业里程碑事件")
	}
	if !strings.HasSuffix(filename, ".ics") {
		t.Errorf("文件名应以 .ics 结尾，实际: %s", filename)
	}
}

func TestExportService_ExportTimelineICS_RecordDownStillExports(t *testing.T) {
	f := setupTestExportService()
	f.record.unavailable = true

	ctx := context.Background()
	f.plan.AddTerm(ctx, "S001", &dto.AddTermRequest{Season: "Spring", Year: 2026})

	buf, _, err := f.svc.ExportTimelineICS(ctx, "S001")
	if err != nil {
		t.Fatalf("推演失败不应阻断时间线导出: %v", err)
	}
	content := buf.String()
	if !strings.Contains(content, "Spring 2026") {
		t.Error("学期里程碑仍应导出")
	}
	if strings.Contains(content, "预计毕业") {
		t.Error("推演不可用时不应出现毕业里程碑")
	}
}
