package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Row is the SQLite table layout. A log is identified by its date and
// sequence, so exporting the same period twice updates rows in place.
type Row struct {
	ID          uint   `gorm:"primaryKey"`
	Date        string `gorm:"not null;uniqueIndex:idx_records_date_sequence"`
	Sequence    int    `gorm:"not null;uniqueIndex:idx_records_date_sequence"`
	Client      string `gorm:"not null;index"`
	Task        string `gorm:"not null"`
	Description string
	Start       string `gorm:"column:start_time"`
	End         string `gorm:"column:end_time"`
	Hours       float64
	File        string
	ExportedAt  time.Time `gorm:"not null"`
}

// TableName sets the table name used by gorm.
func (Row) TableName() string { return "records" }

// OpenDB opens (creating if needed) the SQLite database at path and migrates
// the schema.
func OpenDB(path string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&Row{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// WriteSQLite upserts records into the database at path and returns the
// number of rows written.
func WriteSQLite(path string, records []Record, now time.Time) (int, error) {
	db, err := OpenDB(path)
	if err != nil {
		return 0, err
	}
	defer closeDB(db)

	if len(records) == 0 {
		return 0, nil
	}
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			Date:        r.Date,
			Sequence:    r.Sequence,
			Client:      r.Client,
			Task:        r.Task,
			Description: r.Description,
			Start:       r.Start,
			End:         r.End,
			Hours:       r.Hours,
			File:        r.File,
			ExportedAt:  now,
		})
	}

	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}, {Name: "sequence"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"client", "task", "description", "start_time", "end_time", "hours", "file", "exported_at",
		}),
	}).Create(&rows)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to write records: %w", result.Error)
	}
	return len(rows), nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
