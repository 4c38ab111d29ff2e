package input

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// StdinAdapter reads a deals document from standard input.
// Useful for filtering a saved API response offline.
type StdinAdapter struct {
	reader io.Reader
	now    func() time.Time
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter() *StdinAdapter {
	return NewStdinAdapterWithReader(os.Stdin)
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r, now: time.Now}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Fetch reads the whole input and returns at most limit deals.
// Accepts either a `{"items": [...]}` document or a bare JSON array of deals.
func (a *StdinAdapter) Fetch(ctx context.Context, limit int, _ string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	data, err := io.ReadAll(io.LimitReader(a.reader, maxBodySize))
	if err != nil {
		return Result{}, &NetworkError{Err: fmt.Errorf("read stdin: %w", err)}
	}

	if first := firstNonSpace(data); first == '[' {
		data = append(append([]byte(`{"items":`), data...), '}')
	}

	items, err := ParseItems(data)
	if err != nil {
		return Result{}, &NetworkError{Err: fmt.Errorf("decode stdin: %w", err)}
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return Result{Items: items, FetchedAt: a.now()}, nil
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b
		}
	}
	return 0
}
