package query

import (
	"strings"

	apperrors "userdir/backend/pkg/errors"
)

// Direction 排序方向
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderSpec 排序规格：字段 + 方向，声明式，不执行任何操作
type OrderSpec struct {
	Field     string
	Direction Direction
}

// Asc 升序排序规格
func OrderAsc(field string) OrderSpec {
	return OrderSpec{Field: field, Direction: Asc}
}

// Desc 降序排序规格
func OrderDesc(field string) OrderSpec {
	return OrderSpec{Field: field, Direction: Desc}
}

// ParseOrder 解析外部传入的字段与方向
func ParseOrder(field, direction string) (OrderSpec, error) {
	dir := Direction(strings.ToLower(direction))
	if dir != Asc && dir != Desc {
		return OrderSpec{}, apperrors.NewValidation("direction", "排序方向必须为 asc 或 desc")
	}
	return OrderSpec{Field: field, Direction: dir}, nil
}

// Compile 编译为 ORDER BY 子句内容
func (o OrderSpec) Compile(fields FieldMap) (string, error) {
	col, ok := fields[o.Field]
	if !ok {
		return "", apperrors.NewValidation(o.Field, "未知的排序字段")
	}
	switch o.Direction {
	case Asc:
		return col + " ASC", nil
	case Desc:
		return col + " DESC", nil
	}
	return "", apperrors.NewValidation("direction", "排序方向必须为 asc 或 desc")
}

// PageSpec 分页规格：页码从 1 开始
type PageSpec struct {
	Page int
	Size int
}

// Validate 校验分页参数
func (p PageSpec) Validate() error {
	if p.Page <= 0 {
		return apperrors.NewValidation("page", "页码必须为正整数")
	}
	if p.Size <= 0 {
		return apperrors.NewValidation("size", "每页数量必须为正整数")
	}
	return nil
}

// Offset 计算偏移量
func (p PageSpec) Offset() int {
	return (p.Page - 1) * p.Size
}
