package query

import (
	"strings"

	apperrors "userdir/backend/pkg/errors"
)

// FieldMap API 字段名 → 数据库列名
// 每个实体在 repository 层声明自己的字段表；未登记的字段一律拒绝
type FieldMap map[string]string

// Op 谓词操作符
type Op string

const (
	OpAlways    Op = "always"
	OpEquals    Op = "eq"
	OpPrefix    Op = "prefix"
	OpSuffix    Op = "suffix"
	OpIContains Op = "icontains"
	OpAnd       Op = "and"
	OpOr        Op = "or"
)

// Predicate 纯描述性的布尔过滤条件
// 组合后形成一棵 AST：repository 层编译为参数化 SQL 片段，
// 测试中的 mock 仓库直接在内存里求值
type Predicate struct {
	Op    Op
	Field string
	Value interface{}
	Sub   []Predicate
}

// Always 恒真谓词，作为 And/Or 归约的种子
// 零个或多个可选条件可以直接折叠，无需按条件个数分支
func Always() Predicate {
	return Predicate{Op: OpAlways}
}

// Equals 字段等值匹配
func Equals(field, value string) Predicate {
	return Predicate{Op: OpEquals, Field: field, Value: value}
}

// EqualsInt64 数值键等值匹配，参数以原生整型绑定而非文本
func EqualsInt64(field string, value int64) Predicate {
	return Predicate{Op: OpEquals, Field: field, Value: value}
}

// Prefix 字段前缀匹配（LIKE value%）
func Prefix(field, value string) Predicate {
	return Predicate{Op: OpPrefix, Field: field, Value: value}
}

// Suffix 字段后缀匹配（LIKE %value），用于邮箱域名统计
func Suffix(field, value string) Predicate {
	return Predicate{Op: OpSuffix, Field: field, Value: value}
}

// IContains 忽略大小写的子串匹配
func IContains(field, value string) Predicate {
	return Predicate{Op: OpIContains, Field: field, Value: value}
}

// And 合取组合，恒真子项被剔除；组合顺序不影响语义
func And(preds ...Predicate) Predicate {
	return combine(OpAnd, preds)
}

// Or 析取组合（动态搜索使用）
func Or(preds ...Predicate) Predicate {
	return combine(OpOr, preds)
}

func combine(op Op, preds []Predicate) Predicate {
	sub := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p.Op == OpAlways {
			continue
		}
		sub = append(sub, p)
	}
	switch len(sub) {
	case 0:
		return Always()
	case 1:
		return sub[0]
	}
	return Predicate{Op: op, Sub: sub}
}

// Compile 将谓词编译为参数化 SQL 片段
// 恒真谓词编译为空条件（调用方跳过 WHERE）；未知字段返回校验错误
func (p Predicate) Compile(fields FieldMap) (string, []interface{}, error) {
	switch p.Op {
	case OpAlways:
		return "", nil, nil

	case OpEquals, OpPrefix, OpSuffix, OpIContains:
		col, ok := fields[p.Field]
		if !ok {
			return "", nil, apperrors.NewValidation(p.Field, "未知的查询字段")
		}
		if p.Op == OpEquals {
			return col + " = ?", []interface{}{p.Value}, nil
		}
		// 模式匹配要拼接通配符，只对字符串值有意义
		s, ok := p.Value.(string)
		if !ok {
			return "", nil, apperrors.NewValidation(p.Field, "模式匹配仅支持字符串值")
		}
		switch p.Op {
		case OpPrefix:
			return col + " LIKE ?", []interface{}{s + "%"}, nil
		case OpSuffix:
			return col + " LIKE ?", []interface{}{"%" + s}, nil
		default: // OpIContains
			return "LOWER(" + col + ") LIKE ?", []interface{}{"%" + strings.ToLower(s) + "%"}, nil
		}

	case OpAnd, OpOr:
		joiner := " AND "
		if p.Op == OpOr {
			joiner = " OR "
		}
		conds := make([]string, 0, len(p.Sub))
		var args []interface{}
		for _, sub := range p.Sub {
			cond, subArgs, err := sub.Compile(fields)
			if err != nil {
				return "", nil, err
			}
			if cond == "" {
				continue
			}
			conds = append(conds, "("+cond+")")
			args = append(args, subArgs...)
		}
		if len(conds) == 0 {
			return "", nil, nil
		}
		return strings.Join(conds, joiner), args, nil
	}

	return "", nil, apperrors.NewValidation("predicate", "未知的谓词操作符")
}
