package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sora-rara/bracu-student-hub-sub004/internal/dto"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/model"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/service"
	pkgerrors "github.com/sora-rara/bracu-student-hub-sub004/pkg/errors"
	"github.com/sora-rara/bracu-student-hub-sub004/pkg/response"
)

// PlanHandler 修读计划模块 HTTP 处理器
//
// 安排课程时的资格判定在这里编排：先通过 EligibilityService 解析
// canTake，再交给 PlanService 执行放置。计划服务本身不做资格查询。
type PlanHandler struct {
	planSvc service.PlanService
	eligSvc service.EligibilityService
	projSvc service.ProjectionService
}

// NewPlanHandler 创建 PlanHandler
func NewPlanHandler(planSvc service.PlanService, eligSvc service.EligibilityService, projSvc service.ProjectionService) *PlanHandler {
	return &PlanHandler{planSvc: planSvc, eligSvc: eligSvc, projSvc: projSvc}
}

// GetPlan 获取当前修读计划
// GET /api/v1/plan
func (h *PlanHandler) GetPlan(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	plan, err := h.planSvc.GetPlan(c.Request.Context(), studentID)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, plan)
}

// SavePlan 整体保存修读计划
// POST /api/v1/plan/save
func (h *PlanHandler) SavePlan(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	plan, err := h.planSvc.Save(c.Request.Context(), studentID)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, plan)
}

// AddTerm 新建规划学期
// POST /api/v1/plan/terms
func (h *PlanHandler) AddTerm(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	var req dto.AddTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	term, err := h.planSvc.AddTerm(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.Created(c, term)
}

// DeleteTerm 删除规划学期
// DELETE /api/v1/plan/terms/:termId
func (h *PlanHandler) DeleteTerm(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	termID := c.Param("termId")
	if termID == "" {
		response.BadRequest(c, 10001, "学期标识不能为空")
		return
	}

	if err := h.planSvc.DeleteTerm(c.Request.Context(), studentID, termID); err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, nil)
}

// UpdateCreditLimit 更新学期学分上限
// PUT /api/v1/plan/terms/:termId/credit-limit
func (h *PlanHandler) UpdateCreditLimit(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	termID := c.Param("termId")
	if termID == "" {
		response.BadRequest(c, 10001, "学期标识不能为空")
		return
	}

	var req dto.UpdateCreditLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	term, err := h.planSvc.UpdateCreditLimit(c.Request.Context(), studentID, termID, req.CreditLimit)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, term)
}

// PlaceCourse 向学期安排课程
// POST /api/v1/plan/terms/:termId/courses
func (h *PlanHandler) PlaceCourse(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	termID := c.Param("termId")
	if termID == "" {
		response.BadRequest(c, 10001, "学期标识不能为空")
		return
	}

	var req dto.PlaceCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	// 先解析修读资格；学业数据不可达时拒绝安排而非默认放行
	statuses, err := h.eligSvc.Resolve(c.Request.Context(), studentID)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	canTake := false
	if status, found := statuses[model.NormalizeCode(req.CourseCode)]; found {
		canTake = status.CanTake
	}

	term, err := h.planSvc.PlaceCourse(c.Request.Context(), studentID, termID, &req, canTake)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, term)
}

// RemoveCourse 从学期移除课程
// DELETE /api/v1/plan/terms/:termId/courses/:code
func (h *PlanHandler) RemoveCourse(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	termID := c.Param("termId")
	code := c.Param("code")
	if termID == "" || code == "" {
		response.BadRequest(c, 10001, "学期标识与课程代码不能为空")
		return
	}

	if err := h.planSvc.RemoveCourse(c.Request.Context(), studentID, termID, code); err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetTermLoad 查询学期学分负载
// GET /api/v1/plan/terms/:termId/load
func (h *PlanHandler) GetTermLoad(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	termID := c.Param("termId")
	if termID == "" {
		response.BadRequest(c, 10001, "学期标识不能为空")
		return
	}

	load, err := h.planSvc.ComputeLoad(c.Request.Context(), studentID, termID)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, load)
}

// GetProjection 毕业时间推演
// GET /api/v1/plan/projection
func (h *PlanHandler) GetProjection(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	proj, err := h.projSvc.Project(c.Request.Context(), studentID)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	// 计划为空时无推演结果，data 为 null
	response.OK(c, proj)
}

// handlePlanError 统一处理修读计划模块业务错误
func (h *PlanHandler) handlePlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, 13001, "学期不存在")
	case errors.Is(err, service.ErrDuplicateTerm):
		response.Conflict(c, 13002, "该季节与年份的学期已存在")
	case errors.Is(err, service.ErrInvalidSeason):
		response.BadRequest(c, 13003, "无效的学期季节")
	case errors.Is(err, service.ErrNotEligible):
		response.BadRequest(c, 13004, "硬性先修课未满足，不可安排该课程")
	case errors.Is(err, service.ErrCoursePlacedElsewhere):
		response.Conflict(c, 13005, "该课程已安排在其他学期，如需移动请确认")
	case errors.Is(err, service.ErrInvalidCourseCode):
		response.BadRequest(c, 11002, "课程代码无效")
	case errors.Is(err, pkgerrors.ErrDataUnavailable):
		response.ServiceUnavailable(c, 12001, "学业数据暂不可用，请稍后再试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/plan_handler.go
