package userdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/anveshk/osintdex/config"
	"github.com/anveshk/osintdex/logger"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type GormDB struct {
	db     *gorm.DB
	logger logger.Logger
}

func New(logger logger.Logger, cfg *config.Config) (*GormDB, error) {
	dbPath := filepath.Join(cfg.GetStoragePath(), cfg.GetUserDBPath())
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create user database directory", "err", err.Error(), "path", dbPath)
		return nil, fmt.Errorf("failed to create user database directory: %w", err)
	}

	// busy_timeout keeps concurrent quota decrements queued instead of
	// failing with SQLITE_BUSY.
	dsn := dbPath + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error("failed to open user database", "err", err.Error(), "path", dbPath)
		return nil, fmt.Errorf("failed to open user database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &Team{}, &SearchLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate user database: %w", err)
	}

	return &GormDB{db: db, logger: logger}, nil
}

func (g *GormDB) UserByAPIKey(apiKey string) (*User, error) {
	if apiKey == "" {
		return nil, ErrNotFound
	}

	var user User
	if err := g.db.Where("api_key = ?", apiKey).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		g.logger.Error("failed to look up user by api key", "err", err.Error())
		return nil, err
	}

	return &user, nil
}

func (g *GormDB) CreateUser(user *User) error {
	return g.db.Create(user).Error
}

func (g *GormDB) ListUsers() ([]User, error) {
	var users []User
	if err := g.db.Order("id").Find(&users).Error; err != nil {
		g.logger.Error("failed to list users", "err", err.Error())
		return nil, err
	}
	return users, nil
}

func (g *GormDB) ConsumeSearch(userID uint, query string, dataType string, resultsCount int) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&User{}).
			Where("id = ? AND searches_remaining > 0", userID).
			UpdateColumn("searches_remaining", gorm.Expr("searches_remaining - 1"))
		if result.Error != nil {
			g.logger.Error("failed to decrement search allowance", "user_id", userID, "err", result.Error.Error())
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrQuotaExhausted
		}

		searchLog := SearchLog{
			UserID:       userID,
			Query:        query,
			DataType:     dataType,
			ResultsCount: resultsCount,
			Timestamp:    time.Now().UTC(),
		}
		if err := tx.Create(&searchLog).Error; err != nil {
			g.logger.Error("failed to append search log", "user_id", userID, "err", err.Error())
			return err
		}

		return nil
	})
}

func (g *GormDB) ListSearchLogs(userID uint) ([]SearchLog, error) {
	var logs []SearchLog
	if err := g.db.Where("user_id = ?", userID).Order("id").Find(&logs).Error; err != nil {
		g.logger.Error("failed to list search logs", "user_id", userID, "err", err.Error())
		return nil, err
	}
	return logs, nil
}

func (g *GormDB) CreateTeam(team *Team) error {
	return g.db.Create(team).Error
}

func (g *GormDB) ListTeams() ([]Team, error) {
	var teams []Team
	if err := g.db.Order("id").Find(&teams).Error; err != nil {
		g.logger.Error("failed to list teams", "err", err.Error())
		return nil, err
	}
	return teams, nil
}

func (g *GormDB) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
