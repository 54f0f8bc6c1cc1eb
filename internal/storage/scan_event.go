package storage

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// IScanEvents -
type IScanEvents interface {
	Add(ctx context.Context, event *ScanEvent) error
	GetByKey(ctx context.Context, address, chainID string, limit int) ([]ScanEvent, error)
}

// ScanEvent - append-only record of one completed scan. Rows are
// never updated or deleted.
type ScanEvent struct {
	bun.BaseModel `bun:"table:scan_event" comment:"Append-only log of completed scans."`

	ID           uint64    `bun:"id,pk,autoincrement" comment:"Unique internal identity"`
	Address      string    `bun:"address,notnull" comment:"Lower-cased token contract address"`
	ChainID      string    `bun:"chain_id,notnull" comment:"Canonical chain id"`
	UserID       *string   `comment:"Requesting user, null for anonymous scans"`
	OverallScore int       `bun:",notnull" comment:"Overall score at scan time"`
	Privileged   bool      `bun:",notnull" comment:"Scan ran with privileged access"`
	CreatedAt    time.Time `bun:",nullzero,notnull,default:current_timestamp" comment:"Time of the scan"`
}

// TableName -
func (ScanEvent) TableName() string {
	return "scan_event"
}

var _ bun.BeforeAppendModelHook = (*ScanEvent)(nil)

// BeforeAppendModel -
func (e *ScanEvent) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return nil
}
