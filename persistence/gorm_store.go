package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/disha18704/cerina-health-assignment/types"
)

// threadCheckpoint is the gorm row model: one row per thread holding the
// latest serialized snapshot plus a write version counter.
type threadCheckpoint struct {
	ThreadID  string `gorm:"primaryKey;column:thread_id"`
	State     []byte `gorm:"column:state"`
	Version   int    `gorm:"column:version"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (threadCheckpoint) TableName() string { return "thread_checkpoints" }

// GormStateStore is a sqlite-backed StateStore. The pure-Go driver keeps
// deployments cgo-free.
type GormStateStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStateStore opens (or creates) the sqlite database at path and
// migrates the checkpoint table.
func NewGormStateStore(path string, logger *zap.Logger) (*GormStateStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&threadCheckpoint{}); err != nil {
		return nil, fmt.Errorf("migrate checkpoint table: %w", err)
	}
	return &GormStateStore{db: db, logger: logger}, nil
}

// Load returns the last snapshot for threadID.
func (s *GormStateStore) Load(ctx context.Context, threadID string) (*types.State, error) {
	var row threadCheckpoint
	err := s.db.WithContext(ctx).First(&row, "thread_id = ?", threadID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(threadID)
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint row: %w", err)
	}
	var state types.State
	if err := json.Unmarshal(row.State, &state); err != nil {
		return nil, types.NewError(types.ErrInternalError, "decode state snapshot").WithCause(err)
	}
	return &state, nil
}

// Save upserts the thread's snapshot in a single statement; the write is
// atomic and durable once the call returns.
func (s *GormStateStore) Save(ctx context.Context, threadID string, state *types.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return types.NewError(types.ErrInternalError, "encode state snapshot").WithCause(err)
	}
	row := threadCheckpoint{ThreadID: threadID, State: raw, Version: 1}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "thread_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"state":      raw,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save checkpoint row: %w", err)
	}
	return nil
}

// Delete removes the thread's snapshot; unknown threads are a no-op.
func (s *GormStateStore) Delete(ctx context.Context, threadID string) error {
	return s.db.WithContext(ctx).Delete(&threadCheckpoint{}, "thread_id = ?", threadID).Error
}

// Ping checks database connectivity.
func (s *GormStateStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *GormStateStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
