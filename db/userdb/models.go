package userdb

import "time"

type User struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Email             string `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash      string `gorm:"size:255" json:"-"`
	AuthProvider      string `gorm:"size:32;default:email" json:"auth_provider"`
	IsVerified        bool   `json:"is_verified"`
	IsActive          bool   `gorm:"default:true" json:"is_active"`
	IsAdmin           bool   `json:"is_admin"`
	PlanType          string `gorm:"size:32;default:free" json:"plan_type"`
	SearchesRemaining int    `gorm:"default:10" json:"searches_remaining"`
	SearchesResetDate time.Time `json:"searches_reset_date"`
	TeamID            *uint     `gorm:"index" json:"team_id"`
	APIKey            string    `gorm:"uniqueIndex;size:64" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}

type Team struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:255" json:"name"`
	PlanType        string    `gorm:"size:32;default:enterprise_basic" json:"plan_type"`
	TotalSearches   int       `gorm:"default:100" json:"total_searches"`
	LimitAllocation string    `gorm:"size:32;default:shared" json:"limit_allocation"` // shared or individual
	AdminUserID     uint      `json:"admin_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// SearchLog rows are append-only; nothing updates them after creation.
type SearchLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index" json:"user_id"`
	Query        string    `gorm:"size:1024" json:"query"`
	DataType     string    `gorm:"size:32" json:"data_type"` // empty means all categories
	ResultsCount int       `json:"results_count"`
	Timestamp    time.Time `gorm:"index" json:"timestamp"`
}
