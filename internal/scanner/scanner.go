package scanner

import (
	"github.com/chainscope/tokenscan/internal/aggregator"
	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/chainscope/tokenscan/internal/scoring"
	"github.com/chainscope/tokenscan/internal/token"
	"github.com/shopspring/decimal"
)

// Request - one scan request as it arrives from the outside
type Request struct {
	TokenAddress string  `json:"token_address"`
	ChainID      string  `json:"chain_id"`
	UserID       *string `json:"user_id"`
	ForceRefresh bool    `json:"force_refresh"`
}

// Kind - failure class of a scan
type Kind string

// failure kinds
const (
	KindValidation       Kind = "validation"
	KindUnsupportedChain Kind = "unsupported_chain"
	KindTimeout          Kind = "timeout"
	KindInternal         Kind = "internal"
)

// Error - structured scan failure
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Error -
func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Response - the envelope returned for every scan, success or not
type Response struct {
	RequestID        string  `json:"request_id"`
	Success          bool    `json:"success"`
	Result           *Result `json:"result,omitempty"`
	Error            *Error  `json:"error,omitempty"`
	ProcessingTimeMS int64   `json:"processing_time_ms"`
}

// ScoreSet - per-category scores of one scan. A null category means no
// source feeding it produced data.
type ScoreSet struct {
	Security    *int `json:"security"`
	Tokenomics  *int `json:"tokenomics"`
	Liquidity   *int `json:"liquidity"`
	Community   *int `json:"community"`
	Development *int `json:"development"`
	Overall     int  `json:"overall"`
}

// Result - successful scan payload
type Result struct {
	Address   string `json:"address"`
	ChainID   string `json:"chain_id"`
	ChainName string `json:"chain_name"`

	Name        *string `json:"name"`
	Symbol      *string `json:"symbol"`
	Description *string `json:"description"`
	LogoURL     *string `json:"logo_url"`
	Website     *string `json:"website"`
	Twitter     *string `json:"twitter"`
	GithubURL   *string `json:"github_url"`
	DiscordURL  *string `json:"discord_url"`
	TelegramURL *string `json:"telegram_url"`

	Price       *decimal.Decimal `json:"price"`
	Change24h   *decimal.Decimal `json:"change_24h"`
	MarketCap   *decimal.Decimal `json:"market_cap"`
	Volume24h   *decimal.Decimal `json:"volume_24h"`
	TotalSupply *decimal.Decimal `json:"total_supply"`

	Scores      ScoreSet           `json:"scores"`
	Provenance  map[string]string  `json:"provenance,omitempty"`
	DataSources aggregator.Reports `json:"data_sources"`
	Cached      bool               `json:"cached"`
}

func buildResult(merged *token.Merged, chain chains.Descriptor, scores scoring.Scores, overall int, reports aggregator.Reports) *Result {
	return &Result{
		Address:   merged.Address,
		ChainID:   merged.ChainID,
		ChainName: chain.Name,

		Name:        merged.Name,
		Symbol:      merged.Symbol,
		Description: merged.Description,
		LogoURL:     merged.LogoURL,
		Website:     merged.Website,
		Twitter:     merged.Twitter,
		GithubURL:   merged.GithubURL,
		DiscordURL:  merged.DiscordURL,
		TelegramURL: merged.TelegramURL,

		Price:       merged.Price,
		Change24h:   merged.Change24h,
		MarketCap:   merged.MarketCap,
		Volume24h:   merged.Volume24h,
		TotalSupply: merged.TotalSupply,

		Scores: ScoreSet{
			Security:    scores.Security,
			Tokenomics:  scores.Tokenomics,
			Liquidity:   scores.Liquidity,
			Community:   scores.Community,
			Development: scores.Development,
			Overall:     overall,
		},
		Provenance:  provenance(merged),
		DataSources: reports,
	}
}

func provenance(merged *token.Merged) map[string]string {
	if len(merged.Provenance) == 0 {
		return nil
	}
	out := make(map[string]string, len(merged.Provenance))
	for field, provider := range merged.Provenance {
		out[string(field)] = provider
	}
	return out
}
