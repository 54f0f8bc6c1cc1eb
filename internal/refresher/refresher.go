package refresher

import (
	"context"
	"sync"
	"time"

	"github.com/chainscope/tokenscan/internal/scanner"
	models "github.com/chainscope/tokenscan/internal/storage"
	"github.com/chainscope/tokenscan/internal/types"
	"github.com/dipdup-io/workerpool"
	"github.com/rs/zerolog/log"
)

type scanGuard interface {
	Scan(ctx context.Context, req scanner.Request) scanner.Response
}

// Config -
type Config struct {
	MaxAge       uint64 `yaml:"max_age" validate:"omitempty,min=60"`
	BatchSize    int    `yaml:"batch_size" validate:"omitempty,min=1"`
	WorkersCount int    `yaml:"workers_count" validate:"omitempty,min=1"`
}

// Refresher - periodically re-scans tokens whose last scan grew older
// than the configured age. Tokens already queued or in flight are
// never enqueued twice.
type Refresher struct {
	tokens       models.ITokens
	guard        scanGuard
	maxAge       time.Duration
	batch        int
	workersCount int
	queue        *types.Queue
	pool         *workerpool.Pool[models.Token]
	wg           *sync.WaitGroup
}

// New -
func New(cfg Config, tokens models.ITokens, guard scanGuard) *Refresher {
	var (
		maxAge       = time.Hour
		batch        = 100
		workersCount = 5
	)

	if cfg.MaxAge > 0 {
		maxAge = time.Duration(cfg.MaxAge) * time.Second
	}
	if cfg.BatchSize > 0 {
		batch = cfg.BatchSize
	}
	if cfg.WorkersCount > 0 {
		workersCount = cfg.WorkersCount
	}

	r := &Refresher{
		tokens:       tokens,
		guard:        guard,
		maxAge:       maxAge,
		batch:        batch,
		workersCount: workersCount,
		queue:        types.NewQueue(),
		wg:           new(sync.WaitGroup),
	}
	r.pool = workerpool.NewPool(r.worker, workersCount)
	return r
}

// Start -
func (r *Refresher) Start(ctx context.Context) {
	r.pool.Start(ctx)

	r.wg.Add(1)
	go r.work(ctx)
}

func (r *Refresher) work(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(time.Millisecond * 100)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.pool.QueueSize() > r.workersCount {
				continue
			}

			stale, err := r.tokens.GetStale(ctx, time.Now().Add(-r.maxAge), r.batch)
			if err != nil {
				log.Err(err).Msg("receiving stale tokens")
				continue
			}
			if len(stale) == 0 {
				time.Sleep(time.Second)
				continue
			}

			for i := range stale {
				if r.queue.Contains(stale[i].ID) {
					continue
				}
				r.queue.Add(stale[i].ID)
				r.pool.AddTask(stale[i])
			}
		}
	}
}

func (r *Refresher) worker(ctx context.Context, task models.Token) {
	defer r.queue.Delete(task.ID)

	log.Info().
		Str("address", task.Address).
		Str("chain_id", task.ChainID).
		Msg("refreshing token")

	response := r.guard.Scan(ctx, scanner.Request{
		TokenAddress: task.Address,
		ChainID:      task.ChainID,
		ForceRefresh: true,
	})
	if !response.Success {
		log.Warn().
			Str("address", task.Address).
			Str("chain_id", task.ChainID).
			Str("kind", string(response.Error.Kind)).
			Msg("background refresh failed")
	}
}

// Close -
func (r *Refresher) Close() error {
	r.wg.Wait()
	return r.pool.Close()
}
