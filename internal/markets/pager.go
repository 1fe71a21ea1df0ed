package markets

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/onit-labs/onit-markets-go/pkg/types"
	"go.uber.org/zap"
)

// Pager walks the unbounded market list with offset-cursor pagination. Page
// fetches are strictly sequential because each page's cursor depends on the
// prior page's observed length; the mutex enforces that. A pager is
// single-use: once exhausted it stays exhausted, and a new pager (or a new
// page size) means starting over from offset zero.
type Pager struct {
	client   *Client
	pageSize int

	mu     sync.Mutex
	offset int
	done   bool
}

// ListMarkets returns a pager over the market list with the given page size.
func (c *Client) ListMarkets(pageSize int) *Pager {
	return &Pager{
		client:   c,
		pageSize: pageSize,
	}
}

// Next fetches the next page. Returns (nil, nil) once the sequence is
// exhausted: a page of length zero or a page shorter than the requested
// size both terminate it.
func (p *Pager) Next(ctx context.Context) ([]types.Market, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return nil, nil
	}

	if p.pageSize <= 0 {
		return nil, &types.LocalValidationError{Field: "limit", Reason: fmt.Sprintf("page size must be positive, got %d", p.pageSize)}
	}

	query := url.Values{}
	query.Set("offset", strconv.Itoa(p.offset))
	query.Set("limit", strconv.Itoa(p.pageSize))

	payload, err := p.client.getJSON(ctx, "/markets", query)
	if err != nil {
		return nil, fmt.Errorf("fetch page at offset %d: %w", p.offset, err)
	}

	page, err := types.MarketsFromPayload(payload)
	if err != nil {
		return nil, err
	}

	PagesTotal.Inc()

	p.client.logger.Debug("fetched-page",
		zap.Int("offset", p.offset),
		zap.Int("page-size", p.pageSize),
		zap.Int("markets", len(page)))

	// Next cursor is previous cursor plus observed page length.
	p.offset += len(page)

	if len(page) == 0 || len(page) < p.pageSize {
		p.done = true
	}

	if len(page) == 0 {
		return nil, nil
	}

	return page, nil
}

// Done reports whether the sequence is exhausted.
func (p *Pager) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.done
}

// All drains the pager and returns the accumulated flattened sequence.
func (p *Pager) All(ctx context.Context) ([]types.Market, error) {
	var all []types.Market

	for {
		page, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}

		if page == nil {
			return all, nil
		}

		all = append(all, page...)

		if p.Done() {
			return all, nil
		}
	}
}
