package metrics

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
)

const gormTimerKey = "metrics:timer"

// GormPlugin снимает длительность и ошибки запросов GORM в DbQueryDuration и DbErrors
type GormPlugin struct {
	Service string
}

// NewGormPlugin создает плагин для db.Use
func NewGormPlugin(service string) *GormPlugin {
	return &GormPlugin{Service: service}
}

func (p *GormPlugin) Name() string {
	return "metrics"
}

// Initialize регистрирует before/after колбэки на все операции
func (p *GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("metrics:before_create", p.before(DbOpInsert)); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("metrics:after_create", p.after(DbOpInsert)); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("metrics:before_query", p.before(DbOpSelect)); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("metrics:after_query", p.after(DbOpSelect)); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("metrics:before_update", p.before(DbOpUpdate)); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("metrics:after_update", p.after(DbOpUpdate)); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("metrics:before_delete", p.before(DbOpDelete)); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("metrics:after_delete", p.after(DbOpDelete)); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("metrics:before_row", p.before(DbOpSelect)); err != nil {
		return err
	}
	return cb.Row().After("gorm:row").Register("metrics:after_row", p.after(DbOpSelect))
}

func (p *GormPlugin) before(op DbOperation) func(*gorm.DB) {
	return func(db *gorm.DB) {
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		db.InstanceSet(gormTimerKey, NewDbTimer(p.Service, op, table))
	}
}

func (p *GormPlugin) after(op DbOperation) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if v, ok := db.InstanceGet(gormTimerKey); ok {
			if timer, ok := v.(*DbTimer); ok {
				timer.ObserveDuration()
			}
		}

		// отсутствие записи - штатный ответ, не ошибка БД
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			RecordDbError(p.Service, op)
		}
	}
}

// RecordDbStats выставляет DbConnectionsOpen по статистике пула
func RecordDbStats(service string, stats sql.DBStats) {
	DbConnectionsOpen.WithLabelValues(service, "idle").Set(float64(stats.Idle))
	DbConnectionsOpen.WithLabelValues(service, "in_use").Set(float64(stats.InUse))
}

// CollectDbStats периодически снимает статистику пула до отмены ctx
func CollectDbStats(ctx context.Context, service string, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	RecordDbStats(service, db.Stats())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			RecordDbStats(service, db.Stats())
		}
	}
}
