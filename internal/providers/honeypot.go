package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/chainscope/tokenscan/internal/token"
)

// Honeypot - fallback security-risk provider
type Honeypot struct {
	client *Client
	cfg    DataSource
}

// NewHoneypot -
func NewHoneypot(client *Client, cfg DataSource) *Honeypot {
	return &Honeypot{client: client, cfg: cfg}
}

// Name -
func (h *Honeypot) Name() string { return "honeypot" }

// Fields -
func (h *Honeypot) Fields() []token.Field { return nil }

type honeypotResponse struct {
	HoneypotResult *struct {
		IsHoneypot bool `json:"isHoneypot"`
	} `json:"honeypotResult"`
	ContractCode *struct {
		OpenSource      bool `json:"openSource"`
		RootOpenSource  bool `json:"rootOpenSource"`
		HasProxyCalls   bool `json:"hasProxyCalls"`
	} `json:"contractCode"`
	Flags []string `json:"flags"`
}

// Fetch -
func (h *Honeypot) Fetch(ctx context.Context, address string, chain chains.Descriptor) Outcome {
	started := time.Now()

	chainID, ok := chain.ProviderID(chains.VocabularyHoneypot)
	if !ok {
		return noData(h.Name(), started)
	}

	var response honeypotResponse
	link := fmt.Sprintf("%s/v2/IsHoneypot?address=%s&chain=%s", h.cfg.URL, address, chainID)
	if err := h.client.GetJSON(ctx, link, nil, &response); err != nil {
		if err == ErrNotFound {
			return noData(h.Name(), started)
		}
		return failure(h.Name(), err, started)
	}

	if response.HoneypotResult == nil && response.ContractCode == nil {
		return noData(h.Name(), started)
	}

	security := token.Security{}
	if response.HoneypotResult != nil {
		security.Honeypot = &response.HoneypotResult.IsHoneypot
	}
	if response.ContractCode != nil {
		security.Verified = &response.ContractCode.OpenSource
	}
	for i := range response.Flags {
		if response.Flags[i] == "mintable" {
			canMint := true
			security.CanMint = &canMint
		}
	}

	return success(h.Name(), &token.Partial{Security: &security}, started)
}
