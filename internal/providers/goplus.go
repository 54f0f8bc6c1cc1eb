package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/chainscope/tokenscan/internal/token"
)

// GoPlus - primary security-risk provider
type GoPlus struct {
	client *Client
	cfg    DataSource
}

// NewGoPlus -
func NewGoPlus(client *Client, cfg DataSource) *GoPlus {
	return &GoPlus{client: client, cfg: cfg}
}

// Name -
func (g *GoPlus) Name() string { return "goplus" }

// Fields -
func (g *GoPlus) Fields() []token.Field { return nil }

type goPlusResponse struct {
	Code   int                       `json:"code"`
	Result map[string]goPlusSecurity `json:"result"`
}

type goPlusSecurity struct {
	OwnerAddress     string `json:"owner_address"`
	IsMintable       string `json:"is_mintable"`
	IsHoneypot       string `json:"is_honeypot"`
	TransferPausable string `json:"transfer_pausable"`
	IsOpenSource     string `json:"is_open_source"`
	TrustList        string `json:"trust_list"`
}

const zeroAddress = "0x0000000000000000000000000000000000000000"

// Fetch -
func (g *GoPlus) Fetch(ctx context.Context, address string, chain chains.Descriptor) Outcome {
	started := time.Now()

	chainID, ok := chain.ProviderID(chains.VocabularyGoPlus)
	if !ok {
		return noData(g.Name(), started)
	}

	var response goPlusResponse
	link := fmt.Sprintf("%s/api/v1/token_security/%s?contract_addresses=%s", g.cfg.URL, chainID, address)
	if err := g.client.GetJSON(ctx, link, nil, &response); err != nil {
		if err == ErrNotFound {
			return noData(g.Name(), started)
		}
		return failure(g.Name(), err, started)
	}

	result, ok := response.Result[address]
	if !ok {
		return noData(g.Name(), started)
	}

	renounced := result.OwnerAddress == "" || result.OwnerAddress == zeroAddress
	security := token.Security{
		OwnershipRenounced: &renounced,
	}
	if result.IsMintable != "" {
		security.CanMint = flag(result.IsMintable)
	}
	if result.IsHoneypot != "" {
		security.Honeypot = flag(result.IsHoneypot)
	}
	if result.TransferPausable != "" {
		security.FreezeAuthority = flag(result.TransferPausable)
	}
	if result.IsOpenSource != "" {
		security.Verified = flag(result.IsOpenSource)
	}
	if result.TrustList != "" {
		security.Audited = flag(result.TrustList)
	}

	return success(g.Name(), &token.Partial{Security: &security}, started)
}

func flag(value string) *bool {
	b := value == "1"
	return &b
}
