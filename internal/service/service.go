package service

import (
	"go.uber.org/zap"

	"userdir/backend/config"
	"userdir/backend/internal/repository"
	"userdir/backend/pkg/jwt"
	"userdir/backend/pkg/mailer"
)

// Service 所有业务服务的聚合入口
type Service struct {
	Auth       *AuthService
	User       *UserService
	Department *DepartmentService
	Export     *ExportService
}

// NewService 创建 Service 聚合
func NewService(
	repo *repository.Repository,
	cfg *config.Config,
	jwtMgr *jwt.Manager,
	mail mailer.Sender,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(repo, cfg, jwtMgr, mail, logger),
		User:       NewUserService(repo, cfg, logger),
		Department: NewDepartmentService(repo, logger),
		Export:     NewExportService(repo, logger),
	}
}
