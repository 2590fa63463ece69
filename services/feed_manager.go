package services

import (
	"context"
	"sync"

	"pricing-system/config"
	"pricing-system/monitoring"
)

// FeedManager owns one escalation feed per organizer session, started on
// first use and all torn down on shutdown. Feeds outlive the request that
// first touched them, so they run off the manager's base context, not the
// request context.
type FeedManager struct {
	baseCtx context.Context
	source  EscalationSource
	config  *config.Config
	monitor *monitoring.Monitor

	mu    sync.Mutex
	feeds map[string]*managedFeed
}

// managedFeed gates the feed's startup behind a sync.Once, so concurrent
// first touches of the same owner all block until the initial fetch has
// completed instead of one of them seeing an empty list.
type managedFeed struct {
	feed  *EscalationFeedService
	start sync.Once
	err   error
}

func NewFeedManager(ctx context.Context, source EscalationSource, cfg *config.Config, monitor *monitoring.Monitor) *FeedManager {
	return &FeedManager{
		baseCtx: ctx,
		source:  source,
		config:  cfg,
		monitor: monitor,
		feeds:   make(map[string]*managedFeed),
	}
}

// Get returns the organizer's feed, starting it if this is the first touch
// of the session.
func (m *FeedManager) Get(ownerID string) (*EscalationFeedService, error) {
	m.mu.Lock()
	mf, ok := m.feeds[ownerID]
	if !ok {
		mf = &managedFeed{feed: NewEscalationFeedService(m.source, m.config, m.monitor)}
		m.feeds[ownerID] = mf
	}
	m.mu.Unlock()

	mf.start.Do(func() {
		mf.err = mf.feed.Start(m.baseCtx, ownerID)
	})
	if mf.err != nil {
		return nil, mf.err
	}
	return mf.feed, nil
}

// StopAll unsubscribes every live feed.
func (m *FeedManager) StopAll() {
	m.mu.Lock()
	feeds := make([]*EscalationFeedService, 0, len(m.feeds))
	for _, mf := range m.feeds {
		feeds = append(feeds, mf.feed)
	}
	m.feeds = make(map[string]*managedFeed)
	m.mu.Unlock()

	for _, f := range feeds {
		f.Stop()
	}
}
