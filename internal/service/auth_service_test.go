package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"userdir/backend/config"
	"userdir/backend/internal/dto"
	"userdir/backend/internal/repository"
	apperrors "userdir/backend/pkg/errors"
	"userdir/backend/pkg/jwt"
)

func newTestAuthService() (*AuthService, *repository.Repository, *mockMailer) {
	repo, _, _ := newTestRepo()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret-test-secret-test-secret",
			TokenTTL:   time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
	}
	mail := newMockMailer()
	svc := NewAuthService(repo, cfg, jwt.NewManager(&cfg.Auth), mail, zap.NewNop())
	return svc, repo, mail
}

func registerReq(email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		UserName: "张三",
		Email:    email,
		Address:  "北京",
		Contact:  "13800000",
		Password: "password123",
	}
}

func TestRegister_ThenLogin(t *testing.T) {
	svc, repo, mail := newTestAuthService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerReq("zhangsan@example.com"))
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if resp.ID == 0 {
		t.Fatal("期望注册后分配用户 ID")
	}
	if len(resp.Roles) != 1 || resp.Roles[0] != "ROLE_USER" {
		t.Fatalf("期望默认角色 ROLE_USER，实际 %v", resp.Roles)
	}

	// 自助注册的审计执行者是注册者本人
	stored, err := repo.User.GetByID(ctx, resp.ID)
	if err != nil {
		t.Fatalf("查询用户失败: %v", err)
	}
	if stored.CreatedBy == nil || *stored.CreatedBy != "zhangsan@example.com" {
		t.Fatalf("期望记录注册者为创建人，实际 %v", stored.CreatedBy)
	}

	// 欢迎邮件异步发送
	select {
	case <-mail.sendC:
	case <-time.After(2 * time.Second):
		t.Fatal("期望注册后发送欢迎邮件")
	}
	if got := mail.sentTo(); len(got) != 1 || got[0] != "zhangsan@example.com" {
		t.Fatalf("期望邮件发往注册邮箱，实际 %v", got)
	}

	token, err := svc.Login(ctx, &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if token.AccessToken == "" {
		t.Fatal("期望返回访问令牌")
	}
	if token.ExpiresIn != 3600 {
		t.Fatalf("期望有效期 3600 秒，实际 %d", token.ExpiresIn)
	}
	if token.User.Email != "zhangsan@example.com" {
		t.Fatalf("期望响应携带用户信息，实际 %+v", token.User)
	}

	claims, err := svc.jwtMgr.Parse(token.AccessToken)
	if err != nil {
		t.Fatalf("解析令牌失败: %v", err)
	}
	if claims.Subject != "zhangsan@example.com" || claims.Role != "ROLE_USER" {
		t.Fatalf("令牌声明不符: subject=%s role=%s", claims.Subject, claims.Role)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq("dup@example.com")); err != nil {
		t.Fatalf("首次注册失败: %v", err)
	}
	_, err := svc.Register(ctx, registerReq("dup@example.com"))
	if !errors.Is(err, apperrors.ErrDuplicate) {
		t.Fatalf("期望重复邮箱返回冲突错误，实际 %v", err)
	}
}

func TestRegister_AdminRole(t *testing.T) {
	svc, _, _ := newTestAuthService()
	req := registerReq("admin@example.com")
	req.Role = "ROLE_ADMIN"

	resp, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if len(resp.Roles) != 1 || resp.Roles[0] != "ROLE_ADMIN" {
		t.Fatalf("期望角色 ROLE_ADMIN，实际 %v", resp.Roles)
	}
}

func TestRegister_InvalidContact(t *testing.T) {
	svc, _, _ := newTestAuthService()

	for _, contact := range []string{"1234", "12345678901"} {
		req := registerReq("contact@example.com")
		req.Contact = contact
		_, err := svc.Register(context.Background(), req)
		if !apperrors.IsValidation(err) {
			t.Fatalf("期望联系方式 %q 返回校验错误，实际 %v", contact, err)
		}
	}
}

func TestRegister_BlankFields(t *testing.T) {
	svc, _, _ := newTestAuthService()

	cases := []struct {
		name   string
		mutate func(*dto.RegisterRequest)
	}{
		{"空白用户名", func(r *dto.RegisterRequest) { r.UserName = " \t" }},
		{"空白地址", func(r *dto.RegisterRequest) { r.Address = "   " }},
		{"空白密码", func(r *dto.RegisterRequest) { r.Password = "  " }},
		{"无效邮箱", func(r *dto.RegisterRequest) { r.Email = "not-an-email" }},
	}
	for _, tc := range cases {
		req := registerReq("blank@example.com")
		tc.mutate(req)
		if _, err := svc.Register(context.Background(), req); !apperrors.IsValidation(err) {
			t.Errorf("%s: 期望校验错误，实际 %v", tc.name, err)
		}
	}
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, registerReq("race@example.com"))
		}(i)
	}
	wg.Wait()

	var success, duplicate int
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, apperrors.ErrDuplicate):
			duplicate++
		default:
			t.Fatalf("并发注册出现意外错误: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("期望恰好 1 次注册成功，实际 %d", success)
	}
	if duplicate != workers-1 {
		t.Fatalf("期望 %d 次返回冲突错误，实际 %d", workers-1, duplicate)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq("exists@example.com")); err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	// 密码错误与用户不存在必须返回同一错误
	_, errWrongPwd := svc.Login(ctx, &dto.LoginRequest{Email: "exists@example.com", Password: "wrong-password"})
	_, errNoUser := svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})

	if !errors.Is(errWrongPwd, apperrors.ErrInvalidCredentials) {
		t.Fatalf("期望密码错误返回凭证错误，实际 %v", errWrongPwd)
	}
	if !errors.Is(errNoUser, apperrors.ErrInvalidCredentials) {
		t.Fatalf("期望用户不存在返回凭证错误，实际 %v", errNoUser)
	}
	if errWrongPwd.Error() != errNoUser.Error() {
		t.Fatalf("两种失败的错误信息必须一致: %q vs %q", errWrongPwd, errNoUser)
	}
}

func TestSearch_Keyword(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	seeds := []*dto.RegisterRequest{
		{UserName: "Alice", Email: "alice@foo.com", Address: "上海", Contact: "13811111", Password: "password123"},
		{UserName: "bob", Email: "bob@bar.com", Address: "Shanghai Road", Contact: "13822222", Password: "password123"},
		{UserName: "Carol", Email: "carol@baz.com", Address: "广州", Contact: "13833333", Password: "password123"},
	}
	for _, req := range seeds {
		if _, err := svc.Register(ctx, req); err != nil {
			t.Fatalf("注册 %s 失败: %v", req.Email, err)
		}
	}

	// 关键词忽略大小写，命中用户名、邮箱、地址任一字段
	results, err := svc.Search(ctx, "ALICE")
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(results) != 1 || results[0].UserName != "Alice" {
		t.Fatalf("期望命中 Alice，实际 %+v", results)
	}

	results, err = svc.Search(ctx, "shanghai")
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(results) != 1 || results[0].UserName != "bob" {
		t.Fatalf("期望按地址命中 bob，实际 %+v", results)
	}

	results, err = svc.Search(ctx, "ba")
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("期望按邮箱命中 2 人，实际 %d", len(results))
	}

	if _, err := svc.Search(ctx, "   "); !apperrors.IsValidation(err) {
		t.Fatalf("期望空关键词返回校验错误，实际 %v", err)
	}
}
