package providers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/chainscope/tokenscan/internal/token"
	"github.com/shopspring/decimal"
)

// Covalent - holder-distribution provider. One page of top holders is
// enough to derive the gini coefficient and the concentration bucket.
type Covalent struct {
	client *Client
	cfg    DataSource
}

// NewCovalent -
func NewCovalent(client *Client, cfg DataSource) *Covalent {
	return &Covalent{client: client, cfg: cfg}
}

// Name -
func (c *Covalent) Name() string { return "covalent" }

// Fields -
func (c *Covalent) Fields() []token.Field { return nil }

type covalentResponse struct {
	Data *struct {
		IsSpam bool `json:"is_spam"`
		Items  []struct {
			Balance decimal.Decimal `json:"balance"`
		} `json:"items"`
		Pagination struct {
			TotalCount int64 `json:"total_count"`
		} `json:"pagination"`
	} `json:"data"`
	Error bool `json:"error"`
}

// Fetch -
func (c *Covalent) Fetch(ctx context.Context, address string, chain chains.Descriptor) Outcome {
	started := time.Now()

	chainID, ok := chain.ProviderID(chains.VocabularyCovalent)
	if !ok {
		return noData(c.Name(), started)
	}

	var response covalentResponse
	link := fmt.Sprintf("%s/v1/%s/tokens/%s/token_holders/?page-size=100&key=%s", c.cfg.URL, chainID, address, c.cfg.Key)
	if err := c.client.GetJSON(ctx, link, nil, &response); err != nil {
		if err == ErrNotFound {
			return noData(c.Name(), started)
		}
		return failure(c.Name(), err, started)
	}

	if response.Data == nil || len(response.Data.Items) == 0 {
		return noData(c.Name(), started)
	}

	balances := make([]decimal.Decimal, 0, len(response.Data.Items))
	for i := range response.Data.Items {
		balances = append(balances, response.Data.Items[i].Balance)
	}

	gini := giniCoefficient(balances)
	bucket := concentrationBucket(balances)
	totalHolders := response.Data.Pagination.TotalCount

	distribution := token.Distribution{
		Gini:                &gini,
		ConcentrationBucket: &bucket,
		TotalHolders:        &totalHolders,
		Spam:                &response.Data.IsSpam,
	}

	return success(c.Name(), &token.Partial{Distribution: &distribution}, started)
}

// giniCoefficient - standard gini over the sampled holder balances.
// The sample is the top holders page, so the value skews high for
// well-distributed tokens; scoring only buckets it.
func giniCoefficient(balances []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(balances))
	copy(sorted, balances)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})

	var (
		cumulative decimal.Decimal
		weighted   decimal.Decimal
	)
	for i := range sorted {
		cumulative = cumulative.Add(sorted[i])
		weighted = weighted.Add(sorted[i].Mul(decimal.NewFromInt(int64(i + 1))))
	}
	if cumulative.IsZero() {
		return decimal.Zero
	}

	n := decimal.NewFromInt(int64(len(sorted)))
	two := decimal.NewFromInt(2)
	// G = (2 * sum(i * x_i)) / (n * sum(x)) - (n + 1) / n
	return two.Mul(weighted).Div(n.Mul(cumulative)).Sub(n.Add(decimal.NewFromInt(1)).Div(n))
}

func concentrationBucket(balances []decimal.Decimal) string {
	sorted := make([]decimal.Decimal, len(balances))
	copy(sorted, balances)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].GreaterThan(sorted[j])
	})

	var total decimal.Decimal
	for i := range sorted {
		total = total.Add(sorted[i])
	}
	if total.IsZero() {
		return token.ConcentrationLow
	}

	var topTen decimal.Decimal
	for i := 0; i < len(sorted) && i < 10; i++ {
		topTen = topTen.Add(sorted[i])
	}

	share := topTen.Div(total)
	switch {
	case share.GreaterThan(decimal.NewFromFloat(0.5)):
		return token.ConcentrationHigh
	case share.GreaterThan(decimal.NewFromFloat(0.25)):
		return token.ConcentrationMedium
	default:
		return token.ConcentrationLow
	}
}
