package postgres

import (
	"context"

	models "github.com/chainscope/tokenscan/internal/storage"
	"github.com/uptrace/bun"
)

// ScanEvents -
type ScanEvents struct {
	db *bun.DB
}

// NewScanEvents -
func NewScanEvents(db *bun.DB) *ScanEvents {
	return &ScanEvents{db: db}
}

// Add - append-only insert
func (s *ScanEvents) Add(ctx context.Context, event *models.ScanEvent) error {
	_, err := s.db.NewInsert().Model(event).Exec(ctx)
	return err
}

// GetByKey - latest events for a token, newest first
func (s *ScanEvents) GetByKey(ctx context.Context, address, chainID string, limit int) (events []models.ScanEvent, err error) {
	if limit < 1 {
		limit = 10
	}
	err = s.db.NewSelect().
		Model(&events).
		Where("address = ?", address).
		Where("chain_id = ?", chainID).
		Order("created_at desc").
		Limit(limit).
		Scan(ctx)
	return
}
