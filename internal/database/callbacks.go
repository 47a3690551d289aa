package database

import (
	"time"

	"gorm.io/gorm"
)

// MetricsRecorder is an interface for recording database metrics
type MetricsRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration, err error)
}

// gorm's callback types are unexported; its Before/After results expose Register.
type callbackRegisterer interface {
	Register(name string, fn func(*gorm.DB)) error
}

// RegisterMetricsCallbacks registers GORM callbacks that time every query,
// create, update and delete against the local store
func RegisterMetricsCallbacks(db *gorm.DB, recorder MetricsRecorder) {
	register := func(before, after callbackRegisterer, operation string) {
		before.Register("metrics:"+operation+"_before", func(db *gorm.DB) {
			db.InstanceSet("metrics_start_time", time.Now())
		})
		after.Register("metrics:"+operation+"_after", func(db *gorm.DB) {
			startTime, ok := db.InstanceGet("metrics_start_time")
			if !ok {
				return
			}
			table := db.Statement.Table
			if table == "" {
				table = "unknown"
			}
			recorder.RecordDBQuery(operation, table, time.Since(startTime.(time.Time)), db.Error)
		})
	}

	register(db.Callback().Query().Before("gorm:query"), db.Callback().Query().After("gorm:query"), "select")
	register(db.Callback().Create().Before("gorm:create"), db.Callback().Create().After("gorm:create"), "insert")
	register(db.Callback().Update().Before("gorm:update"), db.Callback().Update().After("gorm:update"), "update")
	register(db.Callback().Delete().Before("gorm:delete"), db.Callback().Delete().After("gorm:delete"), "delete")
}
