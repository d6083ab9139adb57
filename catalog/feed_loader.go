package catalog

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrSuperseded marks a storefront fetch that was cancelled because a newer
// fetch for a changed location was issued. Callers swallow it rather than
// surfacing an error for a response nobody wants anymore.
var ErrSuperseded = errors.New("storefront fetch superseded")

// FeedLoader serializes storefront fetches: issuing a new fetch aborts the
// previous in-flight one, so a stale location's feed can never land after a
// fresh one was requested.
type FeedLoader struct {
	service *Service

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewFeedLoader creates a feed loader over service.
func NewFeedLoader(service *Service) (*FeedLoader, error) {
	if service == nil {
		return nil, errors.New("[NewFeedLoader] service is required")
	}
	return &FeedLoader{service: service}, nil
}

// Load fetches a storefront page for the given location, aborting any fetch
// still in flight. A load that was itself aborted returns ErrSuperseded.
func (l *FeedLoader) Load(ctx context.Context, lat, lng float64, city string, page int) (*StorefrontPage, error) {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.seq++
	seq := l.seq
	l.mu.Unlock()

	result, err := l.service.Storefront(ctx, lat, lng, city, page)

	l.mu.Lock()
	if l.seq == seq {
		l.cancel = nil
	}
	superseded := l.seq != seq
	l.mu.Unlock()

	if err != nil {
		if superseded || errors.Is(err, context.Canceled) {
			return nil, ErrSuperseded
		}
		return nil, err
	}
	return result, nil
}
