package scanner

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chainscope/tokenscan/internal/aggregator"
	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/chainscope/tokenscan/internal/providers"
	"github.com/chainscope/tokenscan/internal/scoring"
	models "github.com/chainscope/tokenscan/internal/storage"
	"github.com/chainscope/tokenscan/internal/storage/postgres"
	"github.com/chainscope/tokenscan/internal/token"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	calls   int32
	delay   time.Duration
	merged  *token.Merged
	reports aggregator.Reports
}

func (f *stubFetcher) Fetch(ctx context.Context, address string, chain chains.Descriptor) (*token.Merged, aggregator.Reports) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.merged == nil {
		return token.NewMerged(address, chain.ID), f.reports
	}
	f.merged.Address = address
	f.merged.ChainID = chain.ID
	return f.merged, f.reports
}

func (f *stubFetcher) callCount() int32 {
	return atomic.LoadInt32(&f.calls)
}

type memTokens struct {
	mx      sync.Mutex
	rows    map[string]models.Token
	upserts int
}

func (t *memTokens) GetByKey(_ context.Context, address, chainID string) (models.Token, error) {
	t.mx.Lock()
	defer t.mx.Unlock()
	row, ok := t.rows[address+"/"+chainID]
	if !ok {
		return models.Token{}, sql.ErrNoRows
	}
	return row, nil
}

func (t *memTokens) Upsert(_ context.Context, row *models.Token) error {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.rows[row.Address+"/"+row.ChainID] = *row
	t.upserts++
	return nil
}

func (t *memTokens) Delete(_ context.Context, address, chainID string) (int64, error) {
	t.mx.Lock()
	defer t.mx.Unlock()
	key := address + "/" + chainID
	if _, ok := t.rows[key]; !ok {
		return 0, nil
	}
	delete(t.rows, key)
	return 1, nil
}

func (t *memTokens) GetStale(_ context.Context, _ time.Time, _ int) ([]models.Token, error) {
	return nil, nil
}

type memSnapshots[M models.Snapshot] struct {
	mx      sync.Mutex
	rows    map[string]M
	upserts int
}

func newMemSnapshots[M models.Snapshot]() *memSnapshots[M] {
	return &memSnapshots[M]{rows: make(map[string]M)}
}

func (s *memSnapshots[M]) GetByKey(_ context.Context, address, chainID string) (M, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	row, ok := s.rows[address+"/"+chainID]
	if !ok {
		var zero M
		return zero, sql.ErrNoRows
	}
	return row, nil
}

func (s *memSnapshots[M]) Upsert(_ context.Context, snapshot M) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	address, chainID := snapshot.Key()
	s.rows[address+"/"+chainID] = snapshot
	s.upserts++
	return nil
}

func (s *memSnapshots[M]) Delete(_ context.Context, address, chainID string) (int64, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	key := address + "/" + chainID
	if _, ok := s.rows[key]; !ok {
		return 0, nil
	}
	delete(s.rows, key)
	return 1, nil
}

type memEvents struct {
	mx     sync.Mutex
	events []models.ScanEvent
}

func (e *memEvents) Add(_ context.Context, event *models.ScanEvent) error {
	e.mx.Lock()
	defer e.mx.Unlock()
	e.events = append(e.events, *event)
	return nil
}

func (e *memEvents) GetByKey(_ context.Context, address, chainID string, limit int) ([]models.ScanEvent, error) {
	e.mx.Lock()
	defer e.mx.Unlock()
	var out []models.ScanEvent
	for i := len(e.events) - 1; i >= 0 && len(out) < limit; i-- {
		if e.events[i].Address == address && e.events[i].ChainID == chainID {
			out = append(out, e.events[i])
		}
	}
	return out, nil
}

type memStore struct {
	tokens      *memTokens
	security    *memSnapshots[*models.SecuritySnapshot]
	tokenomics  *memSnapshots[*models.TokenomicsSnapshot]
	liquidity   *memSnapshots[*models.LiquiditySnapshot]
	community   *memSnapshots[*models.CommunitySnapshot]
	development *memSnapshots[*models.DevelopmentSnapshot]
	events      *memEvents
}

func newMemStore() (*memStore, postgres.Storage) {
	ms := &memStore{
		tokens:      &memTokens{rows: make(map[string]models.Token)},
		security:    newMemSnapshots[*models.SecuritySnapshot](),
		tokenomics:  newMemSnapshots[*models.TokenomicsSnapshot](),
		liquidity:   newMemSnapshots[*models.LiquiditySnapshot](),
		community:   newMemSnapshots[*models.CommunitySnapshot](),
		development: newMemSnapshots[*models.DevelopmentSnapshot](),
		events:      &memEvents{},
	}
	return ms, postgres.Storage{
		Tokens:      ms.tokens,
		Security:    ms.security,
		Tokenomics:  ms.tokenomics,
		Liquidity:   ms.liquidity,
		Community:   ms.community,
		Development: ms.development,
		ScanEvents:  ms.events,
	}
}

func successReports() aggregator.Reports {
	return aggregator.Reports{
		{Name: "goplus", Status: providers.StatusSuccess},
		{Name: "coingecko", Status: providers.StatusSuccess},
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestScanMalformedAddress(t *testing.T) {
	fetcher := &stubFetcher{reports: successReports()}
	_, store := newMemStore()
	guard := NewGuard(fetcher, store, nil, time.Second)

	for _, address := range []string{
		"",
		"0x123",
		"not-an-address",
		"0xZZcf817983ffA5D4f4Bb56A1Fc1D6E8e759c6A9F",
		"0x1f9840a85d5af5bf1d1762f925bdaddc4201f98412",
	} {
		resp := guard.Scan(context.Background(), Request{TokenAddress: address, ChainID: "1"})

		require.False(t, resp.Success, address)
		require.NotNil(t, resp.Error, address)
		require.Equal(t, KindValidation, resp.Error.Kind, address)
		require.NotEmpty(t, resp.RequestID, address)
	}

	require.EqualValues(t, 0, fetcher.callCount(), "no provider may be called for a malformed address")
}

func TestScanUnsupportedChain(t *testing.T) {
	fetcher := &stubFetcher{reports: successReports()}
	_, store := newMemStore()
	guard := NewGuard(fetcher, store, nil, time.Second)

	resp := guard.Scan(context.Background(), Request{
		TokenAddress: "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984",
		ChainID:      "dogechain",
	})

	require.False(t, resp.Success)
	require.Equal(t, KindUnsupportedChain, resp.Error.Kind)
	require.EqualValues(t, 0, fetcher.callCount())
}

func TestScanSuccess(t *testing.T) {
	merged := token.NewMerged("", "")
	merged.Name = ptr("Uniswap")
	merged.Symbol = ptr("UNI")
	merged.Price = ptr(decimal.NewFromFloat(7.42))
	merged.Volume24h = ptr(decimal.NewFromInt(2_000_000))
	merged.MarketCap = ptr(decimal.NewFromInt(4_500_000_000))
	merged.TotalSupply = ptr(decimal.NewFromInt(1_000_000_000))
	merged.Security = token.Security{
		OwnershipRenounced: ptr(true),
		Verified:           ptr(true),
		Honeypot:           ptr(false),
	}
	merged.Provenance[token.FieldName] = "coingecko"

	fetcher := &stubFetcher{merged: merged, reports: successReports()}
	ms, store := newMemStore()
	guard := NewGuard(fetcher, store, nil, time.Second)

	userID := "user-1"
	resp := guard.Scan(context.Background(), Request{
		TokenAddress: "0x1F9840a85d5aF5bf1D1762F925BDADdC4201F984",
		ChainID:      "eth",
		UserID:       &userID,
	})

	require.True(t, resp.Success)
	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Result)

	result := resp.Result
	require.Equal(t, "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984", result.Address)
	require.Equal(t, "1", result.ChainID)
	require.Equal(t, "Ethereum", result.ChainName)
	require.Equal(t, "Uniswap", *result.Name)
	require.Len(t, result.DataSources, 2)
	require.Equal(t, "coingecko", result.Provenance["name"])

	expected := scoring.Compute(merged)
	require.Equal(t, *expected.Security, *result.Scores.Security)
	require.Equal(t, *expected.Liquidity, *result.Scores.Liquidity)
	require.Nil(t, result.Scores.Community)
	require.Nil(t, result.Scores.Development)
	require.Equal(t, scoring.Overall(expected), result.Scores.Overall)

	require.Equal(t, 1, ms.tokens.upserts)
	require.Equal(t, 1, ms.security.upserts)
	require.Equal(t, 1, ms.tokenomics.upserts)
	require.Equal(t, 1, ms.liquidity.upserts)
	require.Equal(t, 0, ms.community.upserts)
	require.Equal(t, 0, ms.development.upserts)

	require.Len(t, ms.events.events, 1)
	event := ms.events.events[0]
	require.Equal(t, "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984", event.Address)
	require.Equal(t, result.Scores.Overall, event.OverallScore)
	require.Equal(t, "user-1", *event.UserID)
	require.True(t, event.Privileged)
}

func TestScanSolanaAddressCasePreserved(t *testing.T) {
	var got string
	fetcher := &stubFetcher{reports: successReports()}
	ms, store := newMemStore()
	guard := NewGuard(fetcher, store, nil, time.Second)

	resp := guard.Scan(context.Background(), Request{
		TokenAddress: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		ChainID:      "solana",
	})

	require.True(t, resp.Success)
	got = resp.Result.Address
	require.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", got)
	require.Equal(t, 1, ms.tokens.upserts)
}

func TestScanNoProviderData(t *testing.T) {
	fetcher := &stubFetcher{
		reports: aggregator.Reports{
			{Name: "goplus", Status: providers.StatusError},
			{Name: "coingecko", Status: providers.StatusNoData},
		},
	}
	ms, store := newMemStore()
	guard := NewGuard(fetcher, store, nil, time.Second)

	resp := guard.Scan(context.Background(), Request{
		TokenAddress: "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984",
		ChainID:      "1",
	})

	require.False(t, resp.Success)
	require.Equal(t, KindInternal, resp.Error.Kind)
	require.Equal(t, 0, ms.tokens.upserts)
	require.Empty(t, ms.events.events)
}

func TestScanDeadline(t *testing.T) {
	fetcher := &stubFetcher{delay: 300 * time.Millisecond, reports: successReports()}
	ms, store := newMemStore()
	guard := NewGuard(fetcher, store, nil, 60*time.Millisecond)

	started := time.Now()
	resp := guard.Scan(context.Background(), Request{
		TokenAddress: "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984",
		ChainID:      "1",
	})
	elapsed := time.Since(started)

	require.False(t, resp.Success)
	require.Equal(t, KindTimeout, resp.Error.Kind)
	require.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
	require.Less(t, elapsed, 250*time.Millisecond)

	// the pipeline finishes later but its result must be discarded
	time.Sleep(400 * time.Millisecond)
	require.Equal(t, 0, ms.tokens.upserts)
	require.Empty(t, ms.events.events)
}

func TestLifecycleTransitions(t *testing.T) {
	lc := newLifecycle()
	require.Equal(t, StateReceived, lc.current())

	require.True(t, lc.to(StateValidating))
	require.False(t, lc.to(StateScoring), "skipping states is illegal")
	require.True(t, lc.to(StateChainResolved))
	require.True(t, lc.to(StateFetching))
	require.True(t, lc.to(StateTimedOut))

	require.False(t, lc.to(StateScoring), "terminal states are absorbing")
	require.False(t, lc.to(StateCompleted))
	require.Equal(t, StateTimedOut, lc.current())
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []State{StateCompleted, StateFailed, StateTimedOut} {
		require.True(t, s.Terminal(), string(s))
	}
	for _, s := range []State{StateReceived, StateValidating, StateChainResolved, StateFetching, StateScoring, StatePersisting} {
		require.False(t, s.Terminal(), string(s))
	}
}
