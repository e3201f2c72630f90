package repository

import (
	"context"
	"time"

	"github.com/GoAMM/hookgate/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// RelayReport is one reportPerformance call as recorded by an authorized
// relayer. The aggregate counter lives in the state store; these rows keep
// the per-call history for reconciliation.
type RelayReport struct {
	ID        uint   `gorm:"primaryKey"`
	Venue     string `gorm:"index;size:66"`
	Reporter  string `gorm:"index;size:42"`
	Savings   uint64
	CreatedAt time.Time
}

func (RelayReport) TableName() string { return "relay_reports" }

type GormReportRepo struct {
	db *gorm.DB
}

func NewGormReportRepo(cfg *config.Config) (*GormReportRepo, error) {
	dsn := cfg.Database.DSN
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&RelayReport{}); err != nil {
		return nil, err
	}
	return &GormReportRepo{db: db}, nil
}

func (r *GormReportRepo) Insert(ctx context.Context, report *RelayReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *GormReportRepo) ListByVenue(ctx context.Context, venue string, limit int) ([]RelayReport, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var reports []RelayReport
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if venue != "" {
		q = q.Where("venue = ?", venue)
	}
	err := q.Find(&reports).Error
	return reports, err
}
