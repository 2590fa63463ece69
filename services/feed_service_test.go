package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricing-system/config"
	"pricing-system/internal/status"
	"pricing-system/models"
)

type fakeEscalationSource struct {
	mu        sync.Mutex
	rows      []models.Escalation
	listErr   error
	deleteErr error
	deleted   []string
}

func (f *fakeEscalationSource) ListByOwner(ctx context.Context, ownerID string) ([]models.Escalation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Escalation, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeEscalationSource) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			break
		}
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func escalationRow(id string) models.Escalation {
	return models.Escalation{
		ID:           id,
		EventID:      "event-1",
		TicketID:     "ticket-1",
		IssueSummary: "Decrease price by 6.4% to 93.60 (base was 100.00).",
		Priority:     models.PriorityRecommendation,
		Created:      "2026-05-11 08:00:00.000Z",
	}
}

// setupTestFeed starts a feed without a realtime transport configured, so
// everything flows through Refetch and Apply.
func setupTestFeed(t *testing.T, source *fakeEscalationSource) *EscalationFeedService {
	t.Helper()
	feed := NewEscalationFeedService(source, &config.Config{}, nil)
	require.NoError(t, feed.Start(context.Background(), "owner-1"))
	t.Cleanup(feed.Stop)
	return feed
}

func TestFeed_InitialFetch(t *testing.T) {
	source := &fakeEscalationSource{rows: []models.Escalation{
		escalationRow("e2"),
		escalationRow("e1"),
	}}
	feed := setupTestFeed(t, source)

	assert.Equal(t, FeedActive, feed.State())

	list := feed.Notifications()
	require.Len(t, list, 2)
	assert.Equal(t, "e2", list[0].ID)
	assert.False(t, list[0].Read)
	assert.Equal(t, 2, feed.UnreadCount())
}

func TestFeed_UnreadCountDerivation(t *testing.T) {
	feed := setupTestFeed(t, &fakeEscalationSource{})

	for _, id := range []string{"a", "b", "c", "d", "f"} {
		feed.Apply(models.EscalationChange{Action: models.ChangeInsert, Escalation: escalationRow(id)})
	}
	require.NoError(t, feed.MarkRead("a"))
	require.NoError(t, feed.MarkRead("d"))

	// read flags are now [true, false, false, true, false]
	assert.Equal(t, 3, feed.UnreadCount())

	feed.MarkAllRead()
	assert.Equal(t, 0, feed.UnreadCount())
}

func TestFeed_MarkReadUnknown(t *testing.T) {
	feed := setupTestFeed(t, &fakeEscalationSource{})
	assert.ErrorIs(t, feed.MarkRead("missing"), status.ErrNotificationNotFound)
}

func TestFeed_ReadStatePreservedAcrossRefetch(t *testing.T) {
	source := &fakeEscalationSource{rows: []models.Escalation{escalationRow("e1")}}
	feed := setupTestFeed(t, source)

	require.NoError(t, feed.MarkRead("e1"))
	require.Equal(t, 0, feed.UnreadCount())

	// A refetch returning the same row must not resurrect unread state.
	require.NoError(t, feed.Refetch(context.Background()))

	list := feed.Notifications()
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
	assert.Equal(t, 0, feed.UnreadCount())
}

func TestFeed_RefetchPicksUpNewRows(t *testing.T) {
	source := &fakeEscalationSource{rows: []models.Escalation{escalationRow("e1")}}
	feed := setupTestFeed(t, source)
	require.NoError(t, feed.MarkRead("e1"))

	source.mu.Lock()
	source.rows = append([]models.Escalation{escalationRow("e2")}, source.rows...)
	source.mu.Unlock()

	require.NoError(t, feed.Refetch(context.Background()))

	list := feed.Notifications()
	require.Len(t, list, 2)
	assert.Equal(t, "e2", list[0].ID)
	assert.False(t, list[0].Read)
	assert.True(t, list[1].Read)
	assert.Equal(t, 1, feed.UnreadCount())
}

func TestFeed_ApplyInsertUpdateDelete(t *testing.T) {
	feed := setupTestFeed(t, &fakeEscalationSource{})

	feed.Apply(models.EscalationChange{Action: models.ChangeInsert, Escalation: escalationRow("x")})

	list := feed.Notifications()
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)
	assert.True(t, list[0].IsNew)

	updated := escalationRow("x")
	updated.IssueSummary = "Severe issue with gate staffing"
	updated.Priority = models.PrioritySevere
	feed.Apply(models.EscalationChange{Action: models.ChangeUpdate, Escalation: updated})

	list = feed.Notifications()
	require.Len(t, list, 1)
	assert.Equal(t, "Severe issue with gate staffing", list[0].Message)
	assert.Equal(t, models.PrioritySevere, list[0].Priority)
	assert.True(t, list[0].Updated)
	// Only explicit user action changes read state.
	assert.False(t, list[0].Read)

	feed.Apply(models.EscalationChange{Action: models.ChangeDelete, Escalation: models.Escalation{ID: "x"}})
	assert.Empty(t, feed.Notifications())
}

func TestFeed_UpdateKeepsReadTrue(t *testing.T) {
	feed := setupTestFeed(t, &fakeEscalationSource{})

	feed.Apply(models.EscalationChange{Action: models.ChangeInsert, Escalation: escalationRow("x")})
	require.NoError(t, feed.MarkRead("x"))

	updated := escalationRow("x")
	updated.IssueSummary = "amended"
	feed.Apply(models.EscalationChange{Action: models.ChangeUpdate, Escalation: updated})

	list := feed.Notifications()
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
	assert.Equal(t, 0, feed.UnreadCount())
}

func TestFeed_DuplicateInsertDegradesToUpdate(t *testing.T) {
	feed := setupTestFeed(t, &fakeEscalationSource{})

	feed.Apply(models.EscalationChange{Action: models.ChangeInsert, Escalation: escalationRow("x")})
	feed.Apply(models.EscalationChange{Action: models.ChangeInsert, Escalation: escalationRow("x")})

	assert.Len(t, feed.Notifications(), 1)
}

func TestFeed_UpdateForUnknownRowInserts(t *testing.T) {
	feed := setupTestFeed(t, &fakeEscalationSource{})

	feed.Apply(models.EscalationChange{Action: models.ChangeUpdate, Escalation: escalationRow("x")})

	list := feed.Notifications()
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)
}

func TestFeed_DeleteFailureKeepsNotification(t *testing.T) {
	source := &fakeEscalationSource{rows: []models.Escalation{escalationRow("e1")}}
	feed := setupTestFeed(t, source)

	source.mu.Lock()
	source.deleteErr = errors.New("backend unavailable")
	source.mu.Unlock()

	err := feed.Delete(context.Background(), "e1")
	assert.Error(t, err)

	// Local state untouched; dropping it would make the row reappear on
	// the next refetch.
	assert.Len(t, feed.Notifications(), 1)
}

func TestFeed_DeleteSuccessRemovesLocally(t *testing.T) {
	source := &fakeEscalationSource{rows: []models.Escalation{escalationRow("e1")}}
	feed := setupTestFeed(t, source)

	require.NoError(t, feed.Delete(context.Background(), "e1"))
	assert.Empty(t, feed.Notifications())
	assert.Equal(t, []string{"e1"}, source.deleted)
}

func TestFeed_DeleteUnknownNotification(t *testing.T) {
	feed := setupTestFeed(t, &fakeEscalationSource{})
	assert.ErrorIs(t, feed.Delete(context.Background(), "ghost"), status.ErrNotificationNotFound)
}

func TestFeed_StopClearsState(t *testing.T) {
	source := &fakeEscalationSource{rows: []models.Escalation{escalationRow("e1")}}
	feed := setupTestFeed(t, source)

	feed.Stop()
	assert.Equal(t, FeedIdle, feed.State())
	assert.Empty(t, feed.Notifications())
}

func TestFeedManager_OneFeedPerOwner(t *testing.T) {
	source := &fakeEscalationSource{}
	manager := NewFeedManager(context.Background(), source, &config.Config{}, nil)
	t.Cleanup(manager.StopAll)

	a, err := manager.Get("owner-1")
	require.NoError(t, err)
	b, err := manager.Get("owner-1")
	require.NoError(t, err)
	c, err := manager.Get("owner-2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestFeedManager_ConcurrentFirstTouch(t *testing.T) {
	source := &fakeEscalationSource{rows: []models.Escalation{escalationRow("e1")}}
	manager := NewFeedManager(context.Background(), source, &config.Config{}, nil)
	t.Cleanup(manager.StopAll)

	// Every racing first touch must block until the initial fetch has
	// completed; none may observe an idle feed or an empty list.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			feed, err := manager.Get("owner-1")
			assert.NoError(t, err)
			assert.Equal(t, FeedActive, feed.State())
			assert.Len(t, feed.Notifications(), 1)
		}()
	}
	wg.Wait()
}
