package workflow

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"almoner/internal/donor"
)

// Lister is the directory's view of the donor API.
type Lister interface {
	List(ctx context.Context, skip, limit int) ([]donor.Donor, error)
	Search(ctx context.Context, query string, limit int) ([]donor.Donor, error)
}

// Directory lists and searches donors. Results are displayed in
// server-provided order with no local filtering or caching. Overlapping
// searches carry a monotonically increasing token so a response that
// arrives after a newer one has been applied is discarded instead of
// clobbering the display.
type Directory struct {
	api    Lister
	logger *slog.Logger
	limit  int

	tokens atomic.Uint64

	mu        sync.Mutex
	applied   uint64
	displayed []donor.Donor
}

// NewDirectory builds a Directory with the given default page limit.
func NewDirectory(api Lister, limit int, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = 100
	}
	return &Directory{api: api, limit: limit, logger: logger}
}

// List refreshes the displayed donors from a plain listing call.
func (d *Directory) List(ctx context.Context, skip int) ([]donor.Donor, error) {
	token := d.tokens.Add(1)
	donors, err := d.api.List(ctx, skip, d.limit)
	if err != nil {
		return nil, err
	}
	d.apply(token, donors)
	return donors, nil
}

// Search refreshes the displayed donors from a search call. The returned
// bool reports whether the response was applied or discarded as stale.
func (d *Directory) Search(ctx context.Context, query string) ([]donor.Donor, bool, error) {
	token := d.tokens.Add(1)
	donors, err := d.api.Search(ctx, query, d.limit)
	if err != nil {
		return nil, false, err
	}
	applied := d.apply(token, donors)
	if !applied {
		d.logger.Debug("discarded stale search response", "query", query, "token", token)
	}
	return donors, applied, nil
}

// Displayed returns the donors currently shown.
func (d *Directory) Displayed() []donor.Donor {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]donor.Donor, len(d.displayed))
	copy(out, d.displayed)
	return out
}

func (d *Directory) apply(token uint64, donors []donor.Donor) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if token <= d.applied {
		return false
	}
	d.applied = token
	d.displayed = donors
	return true
}
