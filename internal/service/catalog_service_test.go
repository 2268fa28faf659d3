package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/sora-rara/bracu-student-hub-sub004/internal/dto"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/model"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/repository"
)

// ── 测试辅助 ──

func setupTestCatalogService() (CatalogService, *mockCourseRepo) {
	courseRepo := newMockCourseRepo()
	repo := &repository.Repository{
		Course: courseRepo,
		Plan:   newMockPlanRepo(),
	}
	svc := NewCatalogService(repo, zap.NewNop())
	return svc, courseRepo
}

// ── Lookup 测试 ──

func TestCatalogService_Lookup_NormalizesCode(t *testing.T) {
	svc, courseRepo := setupTestCatalogService()
	courseRepo.addCourse("CSE220", "数据结构", 3, []string{"CSE111"}, nil)

	// 小写加空格的写法应命中同一门课
	for _, raw := range []string{"cse220", "CSE 220", " cse 2 2 0 "} {
		course, err := svc.Lookup(context.Background(), raw)
		if err != nil {
			t.Fatalf("Lookup(%q) 应成功: %v", raw, err)
		}
		if course.CourseCode != "CSE220" {
			t.Errorf("Lookup(%q) 期望 CSE220，实际=%s", raw, course.CourseCode)
		}
	}
}

func TestCatalogService_Lookup_NotFound(t *testing.T) {
	svc, _ := setupTestCatalogService()

	_, err := svc.Lookup(context.Background(), "CSE999")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestCatalogService_Lookup_EmptyCode(t *testing.T) {
	svc, _ := setupTestCatalogService()

	_, err := svc.Lookup(context.Background(), "   ")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("空白代码期望 ErrCourseNotFound，实际: %v", err)
	}
}

// ── Import 测试 ──

func TestCatalogService_Import_DropsMalformedEntries(t *testing.T) {
	svc, courseRepo := setupTestCatalogService()

	req := &dto.ImportCoursesRequest{Courses: []dto.ImportCourseItem{
		{CourseCode: "cse110", Name: "程序设计", Credits: 3, Category: "program-core"},
		{CourseCode: "   ", Name: "无效条目"},
		{CourseCode: "MAT110", Name: "微积分", Credits: 0, Category: "不存在的类别"},
	}}

	result, err := svc.Import(context.Background(), req)
	if err != nil {
		t.Fatalf("Import 应成功: %v", err)
	}
	if result.Imported != 2 || result.Dropped != 1 {
		t.Errorf("期望 imported=2 dropped=1，实际: %+v", result)
	}

	// 代码规范化为大写
	if _, ok := courseRepo.courses["CSE110"]; !ok {
		t.Error("cse110 应规范化为 CSE110 后入库")
	}

	// 非法类别落入 uncategorized，未声明学分落入默认值
	mat := courseRepo.courses["MAT110"]
	if mat == nil {
		t.Fatal("MAT110 应已入库")
	}
	if mat.Category != model.CategoryUncategorized {
		t.Errorf("非法类别期望 uncategorized，实际=%s", mat.Category)
	}
	if mat.Credits != 3 {
		t.Errorf("未声明学分期望默认 3，实际=%d", mat.Credits)
	}
}

func TestCatalogService_Import_NormalizesPrereqCodes(t *testing.T) {
	svc, courseRepo := setupTestCatalogService()

	req := &dto.ImportCoursesRequest{Courses: []dto.ImportCourseItem{
		{CourseCode: "CSE111", Name: "程序设计II", Credits: 3, Category: "program-core",
			HardPrereqs: []string{"cse 110", "  "}},
	}}

	if _, err := svc.Import(context.Background(), req); err != nil {
		t.Fatalf("Import 应成功: %v", err)
	}

	c := courseRepo.courses["CSE111"]
	if len(c.HardPrereqs) != 1 || c.HardPrereqs[0] != "CSE110" {
		t.Errorf("先修课代码应规范化并丢弃空白项，实际: %v", c.HardPrereqs)
	}
}

// ── ListRemaining 测试 ──

func TestCatalogService_ListRemaining_ExcludesCompleted(t *testing.T) {
	svc, courseRepo := setupTestCatalogService()
	courseRepo.addCourse("CSE110", "程序设计", 3, nil, nil)
	courseRepo.addCourse("CSE111", "程序设计II", 3, []string{"CSE110"}, nil)
	courseRepo.courses["PHY111"] = &model.Course{
		CourseCode: "PHY111", Name: "物理实验", Credits: 1,
		Category: model.CategoryGeneralEducation, IsRepeatable: true,
		HardPrereqs: model.StringArray{}, SoftPrereqs: model.StringArray{},
	}

	record := model.NewCompletionRecord([]model.CompletedCourse{
		{CourseCode: "CSE110"},
		{CourseCode: "PHY111"},
	})

	remaining, err := svc.ListRemaining(context.Background(), record)
	if err != nil {
		t.Fatalf("ListRemaining 应成功: %v", err)
	}

	codes := make(map[string]bool)
	for _, c := range remaining {
		codes[c.CourseCode] = true
	}
	if codes["CSE110"] {
		t.Error("已修且不可重修的课程不应出现在待修列表")
	}
	if !codes["CSE111"] {
		t.Error("未修课程应出现在待修列表")
	}
	if !codes["PHY111"] {
		t.Error("可重修课程即使已修也应保留在待修列表")
	}
}
