package pipeline

import (
	"context"
	"time"
)

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Sleeper suspends the caller between crawl polls.
// Implementations must return early with ctx.Err() when ctx finishes.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// StatusCoder is implemented by upstream errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// ErrorCoder is implemented by upstream errors that carry a machine-readable code.
type ErrorCoder interface {
	ErrorCode() string
}

// Fetcher retrieves a single page over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}
