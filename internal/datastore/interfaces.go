// Package datastore persists irrigation plan history with GORM.
package datastore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tphakala/irrigo/internal/conf"
	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/logger"
)

// DefaultListLimit caps ListPlans when no positive limit is given.
const DefaultListLimit = 50

// ErrPlanNotFound is wrapped when a plan ID does not exist.
var ErrPlanNotFound = errors.NewStd("plan not found")

// Interface abstracts the underlying database implementation
type Interface interface {
	Open() error
	SavePlan(record *PlanRecord) error
	GetPlan(id string) (*PlanRecord, error)
	ListPlans(limit int) ([]PlanRecord, error)
	Summary() (*HistorySummary, error)
	Close() error
}

// DataStore implements Interface on top of a GORM connection
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New returns the store selected by settings, or nil when history is disabled
func New(settings *conf.Settings) Interface {
	if !settings.Datastore.Enabled {
		return nil
	}
	switch settings.Datastore.Type {
	case "mysql":
		return &MySQLStore{Settings: settings}
	default:
		return &SQLiteStore{Settings: settings}
	}
}

// GetLogger returns the datastore module logger
func GetLogger() logger.Logger {
	return logger.Global().Module("datastore")
}

func newGormConfig() *gorm.Config {
	return &gorm.Config{Logger: logger.NewGormLoggerAdapter(GetLogger(), 200*time.Millisecond)}
}

// performAutoMigration creates or updates the schema
func performAutoMigration(db *gorm.DB, dbType string) error {
	start := time.Now()
	if err := db.AutoMigrate(&PlanRecord{}); err != nil {
		return errors.New(fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migrate").
			Context("db_type", dbType).
			Build()
	}
	GetLogger().Debug("database migration completed",
		logger.String("db_type", dbType),
		logger.Duration("elapsed", time.Since(start)))
	return nil
}

func (ds *DataStore) checkOpen(operation string) error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", operation).
			Build()
	}
	return nil
}

// SavePlan inserts a plan record
func (ds *DataStore) SavePlan(record *PlanRecord) error {
	if err := ds.checkOpen("save_plan"); err != nil {
		return err
	}
	if record.ID == "" {
		return errors.Newf("plan record has no id").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}
	if err := ds.DB.Create(record).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_plan").
			Context("plan_id", record.ID).
			Build()
	}
	return nil
}

// GetPlan returns the plan with id, or an error wrapping ErrPlanNotFound
func (ds *DataStore) GetPlan(id string) (*PlanRecord, error) {
	if err := ds.checkOpen("get_plan"); err != nil {
		return nil, err
	}

	var record PlanRecord
	if err := ds.DB.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(fmt.Errorf("%w: %s", ErrPlanNotFound, id)).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Context("plan_id", id).
				Build()
		}
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_plan").
			Context("plan_id", id).
			Build()
	}
	return &record, nil
}

// ListPlans returns the newest plans first
func (ds *DataStore) ListPlans(limit int) ([]PlanRecord, error) {
	if err := ds.checkOpen("list_plans"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var records []PlanRecord
	if err := ds.DB.Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "list_plans").
			Build()
	}
	return records, nil
}

// Summary aggregates all stored plans
func (ds *DataStore) Summary() (*HistorySummary, error) {
	if err := ds.checkOpen("summary"); err != nil {
		return nil, err
	}

	var rows []struct {
		Decision string
		Count    int64
	}
	if err := ds.DB.Model(&PlanRecord{}).
		Select("decision, COUNT(*) AS count").
		Group("decision").
		Scan(&rows).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "summary_decisions").
			Build()
	}

	var volumes []struct {
		TotalVolume *float64
		RainMm      float64
	}
	if err := ds.DB.Model(&PlanRecord{}).Select("total_volume, rain_mm").Scan(&volumes).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "summary_volumes").
			Build()
	}

	summary := &HistorySummary{Decisions: make(map[string]int64, len(rows))}
	for _, r := range rows {
		summary.Decisions[r.Decision] = r.Count
		summary.Plans += r.Count
	}

	total, rain := decimal.Zero, decimal.Zero
	for _, v := range volumes {
		if v.TotalVolume != nil {
			total = total.Add(decimal.NewFromFloat(*v.TotalVolume))
		}
		rain = rain.Add(decimal.NewFromFloat(v.RainMm))
	}
	summary.TotalVolume = total.StringFixed(0)
	summary.AverageRainMm = decimal.Zero.StringFixed(1)
	if len(volumes) > 0 {
		summary.AverageRainMm = rain.Div(decimal.NewFromInt(int64(len(volumes)))).StringFixed(1)
	}
	return summary, nil
}

// Close releases the underlying connection pool
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "close").
			Build()
	}
	return sqlDB.Close()
}
