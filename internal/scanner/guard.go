package scanner

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/chainscope/tokenscan/internal/aggregator"
	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/chainscope/tokenscan/internal/scoring"
	models "github.com/chainscope/tokenscan/internal/storage"
	"github.com/chainscope/tokenscan/internal/storage/postgres"
	"github.com/chainscope/tokenscan/internal/token"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type fetcher interface {
	Fetch(ctx context.Context, address string, chain chains.Descriptor) (*token.Merged, aggregator.Reports)
}

// Guard - owns the whole lifecycle of one scan: validation, the
// three-phase fetch, scoring and persistence all run under a single
// deadline, and no provider call happens before the request passed
// validation. The guard is safe for concurrent use.
type Guard struct {
	fetcher fetcher
	storage postgres.Storage
	cache   *Cache
	timeout time.Duration
}

// NewGuard - cache may be nil to disable result caching.
func NewGuard(fetcher fetcher, storage postgres.Storage, cache *Cache, timeout time.Duration) *Guard {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Guard{
		fetcher: fetcher,
		storage: storage,
		cache:   cache,
		timeout: timeout,
	}
}

var (
	evmAddress    = regexp.MustCompile(`^0x[0-9a-f]{40}$`)
	solanaAddress = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

func validateAddress(address string, chain chains.Descriptor) error {
	if chain.IsEVM {
		if !evmAddress.MatchString(address) {
			return errors.Errorf("not a valid contract address: %s", address)
		}
		return nil
	}
	if !solanaAddress.MatchString(address) {
		return errors.Errorf("not a valid mint address: %s", address)
	}
	return nil
}

type outcome struct {
	result *Result
	err    *Error
}

// Scan - runs one scan end to end and always returns a response: a
// result on success, a classified error otherwise. Pipeline work still
// in flight when the deadline hits is abandoned and its result
// discarded.
func (g *Guard) Scan(ctx context.Context, req Request) Response {
	started := time.Now()
	requestID := uuid.NewString()
	lc := newLifecycle()

	respond := func(result *Result, scanErr *Error) Response {
		resp := Response{
			RequestID:        requestID,
			ProcessingTimeMS: time.Since(started).Milliseconds(),
		}
		if scanErr != nil {
			resp.Error = scanErr
			log.Warn().
				Str("request_id", requestID).
				Str("address", req.TokenAddress).
				Str("chain_id", req.ChainID).
				Str("kind", string(scanErr.Kind)).
				Msg(scanErr.Message)
		} else {
			resp.Success = true
			resp.Result = result
		}
		return resp
	}

	lc.to(StateValidating)

	chain, err := chains.Resolve(chains.Normalize(req.ChainID))
	if err != nil {
		lc.to(StateFailed)
		return respond(nil, &Error{Kind: KindUnsupportedChain, Message: err.Error()})
	}

	address := strings.TrimSpace(req.TokenAddress)
	if chain.IsEVM {
		address = strings.ToLower(address)
	}
	if err := validateAddress(address, chain); err != nil {
		lc.to(StateFailed)
		return respond(nil, &Error{Kind: KindValidation, Message: err.Error()})
	}
	lc.to(StateChainResolved)

	if g.cache != nil && !req.ForceRefresh {
		if result, ok := g.cache.Get(ctx, address, chain.ID); ok {
			lc.to(StateCompleted)
			result.Cached = true
			return respond(result, nil)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", requestID).
					Str("address", address).
					Msgf("recovered panic: %v", r)
				done <- outcome{err: &Error{Kind: KindInternal, Message: "internal failure during scan"}}
			}
		}()
		done <- g.run(ctx, lc, req, address, chain)
	}()

	select {
	case out := <-done:
		if out.err != nil {
			lc.to(StateFailed)
			return respond(nil, out.err)
		}
		lc.to(StateCompleted)
		if g.cache != nil {
			g.cache.Set(ctx, out.result)
		}
		return respond(out.result, nil)

	case <-ctx.Done():
		lc.to(StateTimedOut)
		return respond(nil, &Error{Kind: KindTimeout, Message: "scan deadline exceeded"})
	}
}

func (g *Guard) run(ctx context.Context, lc *lifecycle, req Request, address string, chain chains.Descriptor) outcome {
	lc.to(StateFetching)
	merged, reports := g.fetcher.Fetch(ctx, address, chain)
	if reports.Succeeded() == 0 {
		return outcome{err: &Error{Kind: KindInternal, Message: "no provider returned any data"}}
	}

	if !lc.to(StateScoring) {
		return outcome{err: &Error{Kind: KindTimeout, Message: "scan deadline exceeded"}}
	}
	scores := scoring.Compute(merged)
	overall := scoring.Overall(scores)

	if !lc.to(StatePersisting) {
		return outcome{err: &Error{Kind: KindTimeout, Message: "scan deadline exceeded"}}
	}
	g.persist(ctx, req, merged, scores, overall)

	return outcome{result: buildResult(merged, chain, scores, overall, reports)}
}

// persist - invalidates the previous snapshot and writes the new one.
// The identity row and every category write are independent: a single
// table failing is logged and skipped so one bad write never voids the
// rest of the scan.
func (g *Guard) persist(ctx context.Context, req Request, merged *token.Merged, scores scoring.Scores, overall int) {
	g.storage.Invalidate(ctx, merged.Address, merged.ChainID)

	row := &models.Token{
		Address:      merged.Address,
		ChainID:      merged.ChainID,
		Name:         merged.Name,
		Symbol:       merged.Symbol,
		Description:  merged.Description,
		LogoURL:      merged.LogoURL,
		Website:      merged.Website,
		Twitter:      merged.Twitter,
		GithubURL:    merged.GithubURL,
		DiscordURL:   merged.DiscordURL,
		TelegramURL:  merged.TelegramURL,
		Price:        merged.Price,
		Change24h:    merged.Change24h,
		MarketCap:    merged.MarketCap,
		Volume24h:    merged.Volume24h,
		TotalSupply:  merged.TotalSupply,
		Provenance:   provenance(merged),
		OverallScore: overall,
	}
	if err := g.storage.Tokens.Upsert(ctx, row); err != nil {
		logWrite(err, "token", merged)
	}

	if score := scores.Security; score != nil {
		err := g.storage.Security.Upsert(ctx, &models.SecuritySnapshot{
			Address:            merged.Address,
			ChainID:            merged.ChainID,
			Score:              *score,
			OwnershipRenounced: merged.Security.OwnershipRenounced,
			CanMint:            merged.Security.CanMint,
			Honeypot:           merged.Security.Honeypot,
			FreezeAuthority:    merged.Security.FreezeAuthority,
			Verified:           merged.Security.Verified,
			Audited:            merged.Security.Audited,
		})
		if err != nil {
			logWrite(err, "security_snapshot", merged)
		}
	}

	if score := scores.Tokenomics; score != nil {
		err := g.storage.Tokenomics.Upsert(ctx, &models.TokenomicsSnapshot{
			Address:             merged.Address,
			ChainID:             merged.ChainID,
			Score:               *score,
			TotalSupply:         merged.TotalSupply,
			ConcentrationBucket: merged.Distribution.ConcentrationBucket,
			Gini:                merged.Distribution.Gini,
			TotalHolders:        merged.Distribution.TotalHolders,
			Spam:                merged.Distribution.Spam,
			TVLUSD:              merged.TVLUSD,
		})
		if err != nil {
			logWrite(err, "tokenomics_snapshot", merged)
		}
	}

	if score := scores.Liquidity; score != nil {
		err := g.storage.Liquidity.Upsert(ctx, &models.LiquiditySnapshot{
			Address:           merged.Address,
			ChainID:           merged.ChainID,
			Score:             *score,
			Volume24h:         merged.Volume24h,
			MarketCap:         merged.MarketCap,
			TotalLiquidityUSD: merged.Liquidity.TotalLiquidityUSD,
			MajorPairs:        pairsJSON(merged.Liquidity.MajorPairs),
			LockDays:          merged.Liquidity.LockDays,
			CEXListings:       merged.CEXListings,
		})
		if err != nil {
			logWrite(err, "liquidity_snapshot", merged)
		}
	}

	if score := scores.Community; score != nil {
		err := g.storage.Community.Upsert(ctx, &models.CommunitySnapshot{
			Address:          merged.Address,
			ChainID:          merged.ChainID,
			Score:            *score,
			TwitterFollowers: merged.Community.TwitterFollowers,
			DiscordMembers:   merged.Community.DiscordMembers,
			TelegramMembers:  merged.Community.TelegramMembers,
		})
		if err != nil {
			logWrite(err, "community_snapshot", merged)
		}
	}

	if score := scores.Development; score != nil {
		snapshot := &models.DevelopmentSnapshot{
			Address: merged.Address,
			ChainID: merged.ChainID,
			Score:   *score,
			RepoURL: merged.GithubURL,
		}
		if d := merged.Development; d != nil {
			snapshot.Stars = d.Stars
			snapshot.Forks = d.Forks
			snapshot.Contributors = d.Contributors
			snapshot.Commits30d = d.Commits30d
			snapshot.LastPush = d.LastPush
		}
		if err := g.storage.Development.Upsert(ctx, snapshot); err != nil {
			logWrite(err, "development_snapshot", merged)
		}
	}

	event := &models.ScanEvent{
		Address:      merged.Address,
		ChainID:      merged.ChainID,
		UserID:       req.UserID,
		OverallScore: overall,
		Privileged:   req.UserID != nil,
	}
	if err := g.storage.ScanEvents.Add(ctx, event); err != nil {
		logWrite(err, "scan_event", merged)
	}
}

func logWrite(err error, table string, merged *token.Merged) {
	log.Err(err).
		Str("table", table).
		Str("address", merged.Address).
		Str("chain_id", merged.ChainID).
		Msg("snapshot write")
}

func pairsJSON(pairs []token.Pair) []map[string]any {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, map[string]any{
			"dex":           pair.Dex,
			"name":          pair.Name,
			"liquidity_usd": pair.LiquidityUSD.String(),
		})
	}
	return out
}
