package model

// User 用户表 — 对应 users
// Email 唯一约束在迁移中声明；Contact 长度 [5,10] 由数据库 CHECK 兜底
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"            json:"id"`
	UserName     string `gorm:"type:varchar(100);not null"          json:"user_name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"          json:"-"`
	Address      string `gorm:"type:varchar(255);not null"          json:"address"`
	Contact      string `gorm:"type:varchar(10);not null"           json:"contact"`
	DepartmentID *int64 `gorm:"index"                               json:"department_id,omitempty"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Roles      []Role      `gorm:"many2many:users_roles"   json:"roles,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
