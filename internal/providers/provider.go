package providers

import (
	"context"
	"time"

	"github.com/chainscope/tokenscan/internal/chains"
	"github.com/chainscope/tokenscan/internal/token"
)

// Status - result kind of one provider call
type Status string

// statuses
const (
	StatusSuccess Status = "success"
	StatusNoData  Status = "no_data"
	StatusError   Status = "error"
)

// Outcome - normalized result of a single provider round trip. NoData
// means the provider definitively has not seen this token and is an
// expected outcome; Error is an unexpected fault. Neither carries past
// the adapter as a raised error.
type Outcome struct {
	Provider string
	Status   Status
	Data     *token.Partial
	Err      error
	Latency  time.Duration
}

// Provider - one external data source. Fetch performs exactly one
// network round trip (small fixed pagination allowed) and never
// panics or returns a raw error: every failure is folded into the
// outcome at this boundary.
type Provider interface {
	Name() string
	Fields() []token.Field
	Fetch(ctx context.Context, address string, chain chains.Descriptor) Outcome
}

func success(name string, data *token.Partial, started time.Time) Outcome {
	return Outcome{Provider: name, Status: StatusSuccess, Data: data, Latency: time.Since(started)}
}

func noData(name string, started time.Time) Outcome {
	return Outcome{Provider: name, Status: StatusNoData, Latency: time.Since(started)}
}

func failure(name string, err error, started time.Time) Outcome {
	return Outcome{Provider: name, Status: StatusError, Err: err, Latency: time.Since(started)}
}
