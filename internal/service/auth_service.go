package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userdir/backend/config"
	"userdir/backend/internal/dto"
	"userdir/backend/internal/model"
	"userdir/backend/internal/query"
	"userdir/backend/internal/repository"
	apperrors "userdir/backend/pkg/errors"
	"userdir/backend/pkg/jwt"
	"userdir/backend/pkg/mailer"
)

// AuthService 注册、登录与动态搜索
type AuthService struct {
	repo   *repository.Repository
	cfg    *config.Config
	jwtMgr *jwt.Manager
	mail   mailer.Sender
	logger *zap.Logger
}

// NewAuthService 创建认证服务
func NewAuthService(
	repo *repository.Repository,
	cfg *config.Config,
	jwtMgr *jwt.Manager,
	mail mailer.Sender,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{repo: repo, cfg: cfg, jwtMgr: jwtMgr, mail: mail, logger: logger}
}

// Register 用户注册
// 邮箱唯一性先查后写，数据库唯一约束兜底并发窗口；
// 角色不存在时在同一事务内创建；欢迎邮件异步发送，失败只记日志
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := validateRegister(req); err != nil {
		return nil, err
	}

	count, err := s.repo.User.Count(ctx, query.Equals("email", req.Email))
	if err != nil {
		return nil, apperrors.NewStorage("统计邮箱", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("邮箱 %s: %w", req.Email, apperrors.ErrDuplicate)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, apperrors.NewStorage("密码散列", err)
	}

	roleName := req.Role
	if roleName == "" {
		roleName = model.RoleUser
	}

	var user *model.User
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		role, err := tx.Role.GetOrCreate(ctx, roleName)
		if err != nil {
			return err
		}

		u := &model.User{
			UserName:     req.UserName,
			Email:        req.Email,
			PasswordHash: string(hash),
			Address:      req.Address,
			Contact:      req.Contact,
			Roles:        []model.Role{*role},
		}
		// 自助注册，审计执行者就是注册者本人
		u.StampCreated(model.WithActor(ctx, req.Email))
		if err := tx.User.Create(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		// 先查后写之间被并发注册抢先时由唯一约束兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("邮箱 %s: %w", req.Email, apperrors.ErrDuplicate)
		}
		return nil, apperrors.NewStorage("创建用户", err)
	}

	go s.sendWelcome(user.Email, user.UserName)

	resp := toUserResponse(user)
	return &resp, nil
}

// Login 用户登录，成功签发 JWT
// 用户不存在与密码错误返回同一错误，防止账号枚举
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperrors.NewValidation("email", "邮箱和密码不能为空")
	}

	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.NewStorage("查询用户", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	roleName := model.RoleUser
	if len(user.Roles) > 0 {
		roleName = user.Roles[0].Name
	}

	token, err := s.jwtMgr.Generate(user.Email, roleName)
	if err != nil {
		return nil, apperrors.NewStorage("签发令牌", err)
	}

	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.jwtMgr.TTL().Seconds()),
		User:        toUserResponse(user),
	}, nil
}

// Search 关键词动态搜索
// 用户名、邮箱、地址任一字段忽略大小写包含关键词即命中
func (s *AuthService) Search(ctx context.Context, keyword string) ([]dto.UserResponse, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperrors.NewValidation("keyword", "搜索关键词不能为空")
	}

	pred := query.Or(
		query.IContains("userName", keyword),
		query.IContains("email", keyword),
		query.IContains("address", keyword),
	)
	users, err := s.repo.User.FindByPredicate(ctx, pred, nil)
	if err != nil {
		return nil, wrapStorage("搜索用户", err)
	}
	return toUserResponses(users), nil
}

func (s *AuthService) sendWelcome(email, userName string) {
	body := fmt.Sprintf("%s，您好：\n\n您的账号已注册成功，欢迎使用。", userName)
	if err := s.mail.Send(email, "欢迎注册", body); err != nil {
		s.logger.Error("发送欢迎邮件失败",
			zap.String("email", email),
			zap.Error(err))
	}
}

func validateRegister(req *dto.RegisterRequest) error {
	if strings.TrimSpace(req.UserName) == "" {
		return apperrors.NewValidation("user_name", "用户名不能为空")
	}
	if strings.TrimSpace(req.Email) == "" {
		return apperrors.NewValidation("email", "邮箱不能为空")
	}
	if !strings.Contains(req.Email, "@") {
		return apperrors.NewValidation("email", "邮箱格式无效")
	}
	if strings.TrimSpace(req.Password) == "" {
		return apperrors.NewValidation("password", "密码不能为空")
	}
	if strings.TrimSpace(req.Address) == "" {
		return apperrors.NewValidation("address", "地址不能为空")
	}
	if l := len(req.Contact); l < 5 || l > 10 {
		return apperrors.NewValidation("contact", "联系方式长度必须在 5-10 位之间")
	}
	return nil
}
