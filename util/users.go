package util

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	UUID     string `gorm:"unique"`
	Username string `gorm:"unique"`
	PassHash string
	Perm     int

	AuthToken AuthToken `gorm:"-"`
}

type AuthToken struct {
	gorm.Model
	Token     string `gorm:"unique"`
	TokenHash string
	Label     string
	User      uint
	Expiry    time.Time
}

type ViewerResponse struct {
	ID         uint      `json:"id,omitempty"`
	UUID       string    `json:"uuid"`
	Username   string    `json:"username"`
	Perms      int       `json:"perms"`
	AuthExpiry time.Time `json:"authExpiry"`
}
