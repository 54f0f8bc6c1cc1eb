package aggregator

import (
	"context"
	"sync"

	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/chainscope/tokenscan/internal/providers"
	"github.com/chainscope/tokenscan/internal/resolver"
	"github.com/chainscope/tokenscan/internal/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Report - per-provider accounting for one scan
type Report struct {
	Name    string           `json:"name"`
	Status  providers.Status `json:"status"`
	Latency int64            `json:"latency_ms"`
}

// Reports -
type Reports []Report

// Succeeded - number of providers that answered with data
func (r Reports) Succeeded() int {
	var n int
	for i := range r {
		if r[i].Status == providers.StatusSuccess {
			n++
		}
	}
	return n
}

// Errored - number of providers that failed unexpectedly
func (r Reports) Errored() int {
	var n int
	for i := range r {
		if r[i].Status == providers.StatusError {
			n++
		}
	}
	return n
}

type counter interface {
	Name() string
	Count(ctx context.Context, ref string) providers.CountOutcome
}

type repositoryLookup interface {
	Name() string
	Repository(ctx context.Context, repoURL string) (token.Development, providers.Status, error)
}

// Aggregator - drives provider calls in three dependency-ordered
// phases and merges the answers into one record. Calls within a phase
// run in parallel and fail independently; a phase starts only after
// the previous one has fully settled.
type Aggregator struct {
	securityPrimary  providers.Provider
	securityFallback providers.Provider
	metadata         providers.Provider
	price            providers.Provider

	holders providers.Provider
	pools   providers.Provider
	tvl     providers.Provider

	twitter  counter
	discord  counter
	telegram counter
	github   repositoryLookup
}

// Config - the full provider set of one aggregator
type Config struct {
	SecurityPrimary  providers.Provider
	SecurityFallback providers.Provider
	Metadata         providers.Provider
	Price            providers.Provider
	Holders          providers.Provider
	Pools            providers.Provider
	TVL              providers.Provider
	Twitter          counter
	Discord          counter
	Telegram         counter
	GitHub           repositoryLookup
}

// New -
func New(cfg Config) *Aggregator {
	return &Aggregator{
		securityPrimary:  cfg.SecurityPrimary,
		securityFallback: cfg.SecurityFallback,
		metadata:         cfg.Metadata,
		price:            cfg.Price,
		holders:          cfg.Holders,
		pools:            cfg.Pools,
		tvl:              cfg.TVL,
		twitter:          cfg.Twitter,
		discord:          cfg.Discord,
		telegram:         cfg.Telegram,
		github:           cfg.GitHub,
	}
}

// Fetch - produces the merged record and per-provider accounting for
// one token.
func (a *Aggregator) Fetch(ctx context.Context, address string, chain chains.Descriptor) (*token.Merged, Reports) {
	merged := token.NewMerged(address, chain.ID)
	reports := make(Reports, 0, 11)

	// phase 1: independent sources
	phase1 := a.fanOut(ctx, address, chain, a.securityPrimary, a.securityFallback, a.metadata, a.price)
	reports = append(reports, report(phase1)...)

	merged.Security = mergeSecurity(phase1[0], phase1[1])

	// phase 2: keyed by the same identity, split out so the heavier
	// lookups never delay the security verdict
	phase2 := a.fanOut(ctx, address, chain, a.holders, a.pools, a.tvl)
	reports = append(reports, report(phase2)...)

	if data := phase2[0].Data; data != nil && data.Distribution != nil {
		merged.Distribution = *data.Distribution
	}
	if data := phase2[1].Data; data != nil && data.Liquidity != nil {
		merged.Liquidity = *data.Liquidity
	}
	if data := phase2[2].Data; data != nil && data.TVLUSD != nil {
		merged.TVLUSD = data.TVLUSD
	}
	if data := phase1[2].Data; data != nil && data.CEXListings != nil {
		merged.CEXListings = data.CEXListings
	}

	for _, outcome := range append(phase1, phase2...) {
		if outcome.Status == providers.StatusSuccess {
			merged.Responded[outcome.Provider] = true
		}
	}

	candidates := []resolver.Candidate{
		resolver.NewCandidate(a.metadata.Name(), a.metadata.Fields(), phase1[2].Data),
		resolver.NewCandidate(a.price.Name(), a.price.Fields(), phase1[3].Data),
	}
	resolver.Resolve(merged, candidates)

	// phase 3: lookups keyed by the social handles just resolved
	reports = append(reports, a.social(ctx, merged)...)

	return merged, reports
}

// fanOut - runs the given providers in parallel and waits for all of
// them to settle. A provider failing, or even panicking, never
// affects its siblings.
func (a *Aggregator) fanOut(ctx context.Context, address string, chain chains.Descriptor, list ...providers.Provider) []providers.Outcome {
	outcomes := make([]providers.Outcome, len(list))

	var wg sync.WaitGroup
	for i := range list {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = a.call(ctx, list[i], address, chain)
		}(i)
	}
	wg.Wait()

	return outcomes
}

func (a *Aggregator) call(ctx context.Context, provider providers.Provider, address string, chain chains.Descriptor) (outcome providers.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = providers.Outcome{
				Provider: provider.Name(),
				Status:   providers.StatusError,
				Err:      errors.Errorf("panic: %v", r),
			}
			log.Error().Str("provider", provider.Name()).Msgf("recovered panic: %v", r)
		}
	}()

	outcome = provider.Fetch(ctx, address, chain)
	if outcome.Status == providers.StatusError {
		log.Warn().
			Str("provider", provider.Name()).
			Str("address", address).
			Err(outcome.Err).
			Msg("provider call failed")
	}
	return outcome
}

func (a *Aggregator) social(ctx context.Context, merged *token.Merged) Reports {
	var (
		wg      sync.WaitGroup
		mx      sync.Mutex
		reports = make(Reports, 0, 4)
	)

	add := func(name string, status providers.Status, latency int64) {
		mx.Lock()
		reports = append(reports, Report{Name: name, Status: status, Latency: latency})
		if status == providers.StatusSuccess {
			merged.Responded[name] = true
		}
		mx.Unlock()
	}

	if merged.Twitter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome := a.twitter.Count(ctx, *merged.Twitter)
			if outcome.Status == providers.StatusSuccess {
				merged.Community.TwitterFollowers = outcome.Count
			}
			add(a.twitter.Name(), outcome.Status, outcome.Latency.Milliseconds())
		}()
	}
	if merged.DiscordURL != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome := a.discord.Count(ctx, *merged.DiscordURL)
			if outcome.Status == providers.StatusSuccess {
				merged.Community.DiscordMembers = outcome.Count
			}
			add(a.discord.Name(), outcome.Status, outcome.Latency.Milliseconds())
		}()
	}
	if merged.TelegramURL != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome := a.telegram.Count(ctx, *merged.TelegramURL)
			if outcome.Status == providers.StatusSuccess {
				merged.Community.TelegramMembers = outcome.Count
			}
			add(a.telegram.Name(), outcome.Status, outcome.Latency.Milliseconds())
		}()
	}
	if merged.GithubURL != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			development, status, err := a.github.Repository(ctx, *merged.GithubURL)
			switch status {
			case providers.StatusSuccess:
				merged.Development = &development
			case providers.StatusError:
				log.Warn().Str("repo", *merged.GithubURL).Err(err).Msg("repository lookup failed")
			}
			add(a.github.Name(), status, 0)
		}()
	}

	wg.Wait()
	return reports
}

// mergeSecurity - fixed-priority overwrite: the primary provider wins
// on every flag it reports, the fallback fills the gaps. Deliberately
// not a consensus scheme.
func mergeSecurity(primary, fallback providers.Outcome) token.Security {
	var merged token.Security

	if fallback.Data != nil && fallback.Data.Security != nil {
		merged = *fallback.Data.Security
	}
	if primary.Data != nil && primary.Data.Security != nil {
		s := primary.Data.Security
		if s.OwnershipRenounced != nil {
			merged.OwnershipRenounced = s.OwnershipRenounced
		}
		if s.CanMint != nil {
			merged.CanMint = s.CanMint
		}
		if s.Honeypot != nil {
			merged.Honeypot = s.Honeypot
		}
		if s.FreezeAuthority != nil {
			merged.FreezeAuthority = s.FreezeAuthority
		}
		if s.Verified != nil {
			merged.Verified = s.Verified
		}
		if s.Audited != nil {
			merged.Audited = s.Audited
		}
	}

	return merged
}

func report(outcomes []providers.Outcome) Reports {
	reports := make(Reports, 0, len(outcomes))
	for i := range outcomes {
		reports = append(reports, Report{
			Name:    outcomes[i].Provider,
			Status:  outcomes[i].Status,
			Latency: outcomes[i].Latency.Milliseconds(),
		})
	}
	return reports
}
