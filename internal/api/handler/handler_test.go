package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sora-rara/bracu-student-hub-sub004/internal/dto"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/model"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/service"
	pkgerrors "github.com/sora-rara/bracu-student-hub-sub004/pkg/errors"
	"github.com/sora-rara/bracu-student-hub-sub004/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock PlanService ──

type mockPlanService struct {
	getPlanResult     *dto.PlanResponse
	getPlanErr        error
	termsResult       []model.PlannedTerm
	termsErr          error
	addTermResult     *dto.TermPayload
	addTermErr        error
	deleteTermErr     error
	updateLimitResult *dto.TermPayload
	updateLimitErr    error
	placeResult       *dto.TermPayload
	placeErr          error
	removeErr         error
	loadResult        *dto.TermLoadResponse
	loadErr           error
	saveResult        *dto.PlanResponse
	saveErr           error
}

func (m *mockPlanService) GetPlan(_ context.Context, _ string) (*dto.PlanResponse, error) {
	return m.getPlanResult, m.getPlanErr
}
func (m *mockPlanService) Terms(_ context.Context, _ string) ([]model.PlannedTerm, error) {
	return m.termsResult, m.termsErr
}
func (m *mockPlanService) AddTerm(_ context.Context, _ string, _ *dto.AddTermRequest) (*dto.TermPayload, error) {
	return m.addTermResult, m.addTermErr
}
func (m *mockPlanService) DeleteTerm(_ context.Context, _, _ string) error {
	return m.deleteTermErr
}
func (m *mockPlanService) UpdateCreditLimit(_ context.Context, _, _ string, _ int) (*dto.TermPayload, error) {
	return m.updateLimitResult, m.updateLimitErr
}
func (m *mockPlanService) PlaceCourse(_ context.Context, _, _ string, _ *dto.PlaceCourseRequest, _ bool) (*dto.TermPayload, error) {
	return m.placeResult, m.placeErr
}
func (m *mockPlanService) RemoveCourse(_ context.Context, _, _, _ string) error {
	return m.removeErr
}
func (m *mockPlanService) ComputeLoad(_ context.Context, _, _ string) (*dto.TermLoadResponse, error) {
	return m.loadResult, m.loadErr
}
func (m *mockPlanService) Save(_ context.Context, _ string) (*dto.PlanResponse, error) {
	return m.saveResult, m.saveErr
}
func (m *mockPlanService) Reset(_ string) {}

// ── Mock EligibilityService ──

type mockEligibilityService struct {
	resolveResult   map[string]model.EligibilityStatus
	resolveErr      error
	checkResult     *dto.PrereqCheckResponse
	checkErr        error
	remainingResult []dto.RemainingCourseResponse
	remainingErr    error
}

func (m *mockEligibilityService) Resolve(_ context.Context, _ string) (map[string]model.EligibilityStatus, error) {
	return m.resolveResult, m.resolveErr
}
func (m *mockEligibilityService) CheckPrerequisites(_ context.Context, _, _ string) (*dto.PrereqCheckResponse, error) {
	return m.checkResult, m.checkErr
}
func (m *mockEligibilityService) RemainingCourses(_ context.Context, _ string) ([]dto.RemainingCourseResponse, error) {
	return m.remainingResult, m.remainingErr
}

// ── Mock ProjectionService ──

type mockProjectionService struct {
	result *model.GraduationProjection
	err    error
}

func (m *mockProjectionService) Project(_ context.Context, _ string) (*model.GraduationProjection, error) {
	return m.result, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func performRequest(method, path string, body interface{}, withStudent bool, register func(*gin.Engine)) *httptest.ResponseRecorder {
	r := gin.New()
	if withStudent {
		r.Use(func(c *gin.Context) {
			c.Set("student_id", "S001")
			c.Next()
		})
	}
	register(r)

	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应体解析失败: %v", err)
	}
	return resp
}

// ═══════════════════════════════════════════════════════════
// PlanHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPlanHandler_GetPlan_Success(t *testing.T) {
	planSvc := &mockPlanService{getPlanResult: &dto.PlanResponse{
		PlannedSemesters: []dto.TermPayload{{TermID: "tmp-1", SemesterName: "Spring 2026"}},
	}}
	h := NewPlanHandler(planSvc, &mockEligibilityService{}, &mockProjectionService{})

	w := performRequest(http.MethodGet, "/plan", nil, true, func(r *gin.Engine) {
		r.GET("/plan", h.GetPlan)
	})

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Code != 0 {
		t.Errorf("期望业务码 0，实际 %d", resp.Code)
	}
}

func TestPlanHandler_GetPlan_MissingStudentID(t *testing.T) {
	h := NewPlanHandler(&mockPlanService{}, &mockEligibilityService{}, &mockProjectionService{})

	w := performRequest(http.MethodGet, "/plan", nil, false, func(r *gin.Engine) {
		r.GET("/plan", h.GetPlan)
	})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("缺少学生标识期望 401，实际 %d", w.Code)
	}
}

func TestPlanHandler_AddTerm_DuplicateConflict(t *testing.T) {
	planSvc := &mockPlanService{addTermErr: service.ErrDuplicateTerm}
	h := NewPlanHandler(planSvc, &mockEligibilityService{}, &mockProjectionService{})

	w := performRequest(http.MethodPost, "/plan/terms",
		dto.AddTermRequest{Season: "Spring", Year: 2026}, true,
		func(r *gin.Engine) { r.POST("/plan/terms", h.AddTerm) })

	if w.Code != http.StatusConflict {
		t.Errorf("重复学期期望 409，实际 %d", w.Code)
	}
}

func TestPlanHandler_AddTerm_BadPayload(t *testing.T) {
	h := NewPlanHandler(&mockPlanService{}, &mockEligibilityService{}, &mockProjectionService{})

	// 缺少必填 season
	w := performRequest(http.MethodPost, "/plan/terms",
		map[string]interface{}{"year": 2026}, true,
		func(r *gin.Engine) { r.POST("/plan/terms", h.AddTerm) })

	if w.Code != http.StatusBadRequest {
		t.Errorf("非法请求体期望 400，实际 %d", w.Code)
	}
}

func TestPlanHandler_PlaceCourse_ResolvesEligibilityFirst(t *testing.T) {
	planSvc := &mockPlanService{placeResult: &dto.TermPayload{TermID: "tmp-1"}}
	eligSvc := &mockEligibilityService{resolveResult: map[string]model.EligibilityStatus{
		"CSE110": {CourseCode: "CSE110", CanTake: true},
	}}
	h := NewPlanHandler(planSvc, eligSvc, &mockProjectionService{})

	w := performRequest(http.MethodPost, "/plan/terms/tmp-1/courses",
		dto.PlaceCourseRequest{CourseCode: "cse 110"}, true,
		func(r *gin.Engine) { r.POST("/plan/terms/:termId/courses", h.PlaceCourse) })

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
}

func TestPlanHandler_PlaceCourse_DataUnavailable(t *testing.T) {
	eligSvc := &mockEligibilityService{resolveErr: pkgerrors.ErrDataUnavailable}
	h := NewPlanHandler(&mockPlanService{}, eligSvc, &mockProjectionService{})

	w := performRequest(http.MethodPost, "/plan/terms/tmp-1/courses",
		dto.PlaceCourseRequest{CourseCode: "CSE110"}, true,
		func(r *gin.Engine) { r.POST("/plan/terms/:termId/courses", h.PlaceCourse) })

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("学业数据不可用期望 503，实际 %d", w.Code)
	}
}

func TestPlanHandler_PlaceCourse_MoveNeedsConfirmation(t *testing.T) {
	planSvc := &mockPlanService{placeErr: service.ErrCoursePlacedElsewhere}
	eligSvc := &mockEligibilityService{resolveResult: map[string]model.EligibilityStatus{
		"CSE110": {CourseCode: "CSE110", CanTake: true},
	}}
	h := NewPlanHandler(planSvc, eligSvc, &mockProjectionService{})

	w := performRequest(http.MethodPost, "/plan/terms/tmp-2/courses",
		dto.PlaceCourseRequest{CourseCode: "CSE110"}, true,
		func(r *gin.Engine) { r.POST("/plan/terms/:termId/courses", h.PlaceCourse) })

	if w.Code != http.StatusConflict {
		t.Errorf("跨学期移动未确认期望 409，实际 %d", w.Code)
	}
}

func TestPlanHandler_PlaceCourse_NotEligible(t *testing.T) {
	planSvc := &mockPlanService{placeErr: service.ErrNotEligible}
	eligSvc := &mockEligibilityService{resolveResult: map[string]model.EligibilityStatus{}}
	h := NewPlanHandler(planSvc, eligSvc, &mockProjectionService{})

	w := performRequest(http.MethodPost, "/plan/terms/tmp-1/courses",
		dto.PlaceCourseRequest{CourseCode: "CSE220"}, true,
		func(r *gin.Engine) { r.POST("/plan/terms/:termId/courses", h.PlaceCourse) })

	if w.Code != http.StatusBadRequest {
		t.Errorf("先修未满足期望 400，实际 %d", w.Code)
	}
}

func TestPlanHandler_GetProjection_EmptyPlan(t *testing.T) {
	h := NewPlanHandler(&mockPlanService{}, &mockEligibilityService{}, &mockProjectionService{})

	w := performRequest(http.MethodGet, "/plan/projection", nil, true, func(r *gin.Engine) {
		r.GET("/plan/projection", h.GetProjection)
	})

	if w.Code != http.StatusOK {
		t.Fatalf("空计划推演期望 200，实际 %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Data != nil {
		t.Errorf("空计划期望 data 为 null，实际: %v", resp.Data)
	}
}

func TestPlanHandler_SavePlan_StoreFailure(t *testing.T) {
	planSvc := &mockPlanService{saveErr: context.DeadlineExceeded}
	h := NewPlanHandler(planSvc, &mockEligibilityService{}, &mockProjectionService{})

	w := performRequest(http.MethodPost, "/plan/save", nil, true, func(r *gin.Engine) {
		r.POST("/plan/save", h.SavePlan)
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("保存失败期望 500，实际 %d", w.Code)
	}
}
