package client

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/mws/internal/constants"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

// checkLimit rejects identifier lists the service would refuse.
func checkLimit(operation string, count, limit int) error {
	if count > limit {
		return fmt.Errorf("%w: %s accepts at most %d, got %d", mws.ErrTooManyIdentifiers, operation, limit, count)
	}

	return nil
}

// chunk splits ids into consecutive slices of at most size entries.
func chunk(ids []string, size int) [][]string {
	var chunks [][]string

	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}

	return chunks
}

// dedupe drops repeated ids, keeping the first occurrence.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}

		seen[id] = true

		out = append(out, id)
	}

	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(constants.TimestampFormat)
}

// call runs an operation and returns its <Action>Result element.
func call(ctx context.Context, caller mws.Caller, operation string, params *mws.Params) (*mws.Node, error) {
	result, err := caller.Call(ctx, operation, params, nil)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers add the operation context
	}

	return result.Payload(), nil
}
