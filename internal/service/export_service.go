package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"userdir/backend/internal/repository"
	apperrors "userdir/backend/pkg/errors"
)

// ExportService 用户名单 Excel 导出
type ExportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建导出服务
func NewExportService(repo *repository.Repository, logger *zap.Logger) *ExportService {
	return &ExportService{repo: repo, logger: logger}
}

const exportSheet = "用户列表"

var exportHeaders = []string{"ID", "用户名", "邮箱", "地址", "联系方式", "部门"}

// ExportUsers 导出全量用户为 xlsx，返回文件内容与建议文件名
func (s *ExportService) ExportUsers(ctx context.Context) (*bytes.Buffer, string, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		return nil, "", apperrors.NewStorage("查询用户列表", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", exportSheet)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		f.SetCellStyle(exportSheet, "A1", "F1", headerStyle)
	}
	f.SetColWidth(exportSheet, "A", "F", 22)

	for i := range users {
		u := &users[i]
		deptName := ""
		if u.Department != nil {
			deptName = u.Department.DeptName
		}
		values := []interface{}{u.ID, u.UserName, u.Email, u.Address, u.Contact, deptName}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(exportSheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", apperrors.NewStorage("生成Excel", err)
	}

	filename := fmt.Sprintf("users_%s.xlsx", time.Now().Format("20060102_150405"))
	s.logger.Info("导出用户名单",
		zap.Int("count", len(users)),
		zap.String("filename", filename))
	return &buf, filename, nil
}
