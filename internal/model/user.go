package model

import (
	"time"
)

type UserRole string

const (
	Learner UserRole = "learner"
	Coach   UserRole = "coach"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"size:20;default:'learner'" json:"role"`
	XP        int       `gorm:"default:0" json:"xp"` // 完成训练会话累计的经验值
	Language  string    `gorm:"size:10;default:'en'" json:"language"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin *time.Time `json:"lastLogin,omitempty"` // 由 UpdateLastLogin 维护
	LastSeen  *time.Time `json:"lastSeen,omitempty"`  // 由活跃中间件维护
}

func (User) TableName() string {
	return "users"
}
