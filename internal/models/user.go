package models

import (
	"time"
)

const (
	RoleAdmin      = "admin"
	RoleCaissier   = "caissier"
	RoleSuperAdmin = "super_admin"
)

// User carries a bcrypt hash only; plain-text credentials are not supported.
// StockID is nil only for super_admin accounts, which see every location.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;not null" json:"username"`
	Email        string    `gorm:"size:100;unique;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:20;default:'caissier'" json:"role"`
	StockID      *uint     `gorm:"index" json:"stock_id"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
