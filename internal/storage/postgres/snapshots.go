package postgres

import (
	"context"
	"database/sql"

	models "github.com/chainscope/tokenscan/internal/storage"
	"github.com/uptrace/bun"
)

type snapshotPtr[T any] interface {
	*T
	models.Snapshot
}

// Snapshots - one category snapshot table. Upsert replaces the row
// wholesale inside a per-table transaction; nothing is ever patched
// in place.
type Snapshots[T any, M snapshotPtr[T]] struct {
	db *bun.DB
}

// NewSnapshots -
func NewSnapshots[T any, M snapshotPtr[T]](db *bun.DB) *Snapshots[T, M] {
	return &Snapshots[T, M]{db: db}
}

// GetByKey -
func (s *Snapshots[T, M]) GetByKey(ctx context.Context, address, chainID string) (M, error) {
	snapshot := M(new(T))
	err := s.db.NewSelect().
		Model(snapshot).
		Where("address = ?", address).
		Where("chain_id = ?", chainID).
		Scan(ctx)
	return snapshot, err
}

// Upsert -
func (s *Snapshots[T, M]) Upsert(ctx context.Context, snapshot M) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model(snapshot).WherePK().Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(snapshot).Exec(ctx)
		return err
	})
}

// Delete -
func (s *Snapshots[T, M]) Delete(ctx context.Context, address, chainID string) (int64, error) {
	var model M
	result, err := s.db.NewDelete().
		Model(model).
		Where("address = ?", address).
		Where("chain_id = ?", chainID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
