package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// GormStore is the sqlite-backed Store, one row per normalized query.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens (or creates) the sqlite database at path and
// migrates the draft_embeddings table.
func NewGormStore(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate draft_embeddings table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Upsert inserts or replaces the record keyed by its normalized query.
// A replaced row keeps its created_at and bumps updated_at.
func (s *GormStore) Upsert(ctx context.Context, rec *Record) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "normalized_query"}},
		DoUpdates: clause.Assignments(map[string]any{
			"draft_title":      rec.DraftTitle,
			"draft_content":    rec.DraftJSON,
			"embedding":        rec.Embedding,
			"original_message": rec.OriginalQuery,
			"metadata":         rec.MetadataJSON,
			"updated_at":       time.Now(),
		}),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("upsert embedding record: %w", err)
	}
	return nil
}

// All returns every stored record.
func (s *GormStore) All(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("scan embedding records: %w", err)
	}
	return records, nil
}

// Delete removes a record; deleting an absent key is a no-op.
func (s *GormStore) Delete(ctx context.Context, normalizedQuery string) error {
	return s.db.WithContext(ctx).Delete(&Record{}, "normalized_query = ?", normalizedQuery).Error
}

// Count returns the number of stored records.
func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Record{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the underlying database handle.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
