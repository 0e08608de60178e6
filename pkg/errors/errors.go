package errors

import (
	"errors"
	"fmt"
)

// ── 通用业务错误 ──

var (
	// ErrNotFound 按 ID 或唯一键查询未命中
	ErrNotFound = errors.New("资源不存在")
	// ErrDuplicate 唯一性约束冲突（邮箱、部门编码等）
	ErrDuplicate = errors.New("资源已存在")
	// ErrInvalidCredentials 登录失败（不区分用户不存在与密码错误，防止账号枚举）
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
)

// ValidationError 字段级输入校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation 创建字段校验错误
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation 判断错误是否为校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError 底层存储不可用或未归类的存储失败
// 原始错误只进日志，不透传给调用方
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("存储操作失败 [%s]: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorage 包装存储层错误
func NewStorage(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// IsStorage 判断错误是否为存储错误
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
