package model

// Department 部门表 — 对应 departments
// DeptCode 唯一；删除部门时用户的 department_id 由外键置空
type Department struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"              json:"id"`
	DeptCode string `gorm:"type:varchar(50);not null;uniqueIndex" json:"dept_code"`
	DeptName string `gorm:"type:varchar(100);not null"            json:"dept_name"`
	BaseModel

	// 反向关联，序列化时忽略避免循环
	Users []User `gorm:"foreignKey:DepartmentID" json:"-"`
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }
