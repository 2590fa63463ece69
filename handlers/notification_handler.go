package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"pricing-system/internal/status"
	"pricing-system/services"
)

// NotificationHandler exposes the organizer's escalation feed: listing,
// read state, and destructive delete.
type NotificationHandler struct {
	feeds *services.FeedManager
}

func NewNotificationHandler(feeds *services.FeedManager) *NotificationHandler {
	return &NotificationHandler{feeds: feeds}
}

func (h *NotificationHandler) feedFor(e *core.RequestEvent) (*services.EscalationFeedService, error) {
	if e.Auth == nil {
		return nil, apis.NewUnauthorizedError("Unauthorized", nil)
	}
	feed, err := h.feeds.Get(e.Auth.Id)
	if err != nil {
		return nil, apis.NewInternalServerError("Failed to open notification feed", err)
	}
	return feed, nil
}

func (h *NotificationHandler) List(e *core.RequestEvent) error {
	feed, err := h.feedFor(e)
	if err != nil {
		return err
	}

	return e.JSON(http.StatusOK, map[string]any{
		"notifications": feed.Notifications(),
		"unread_count":  feed.UnreadCount(),
		"feed_state":    feed.State().String(),
	})
}

func (h *NotificationHandler) MarkRead(e *core.RequestEvent) error {
	feed, err := h.feedFor(e)
	if err != nil {
		return err
	}

	id := e.Request.PathValue("id")
	if err := feed.MarkRead(id); err != nil {
		return apis.NewNotFoundError("Notification not found", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":      "Notification marked as read",
		"unread_count": feed.UnreadCount(),
	})
}

func (h *NotificationHandler) MarkAllRead(e *core.RequestEvent) error {
	feed, err := h.feedFor(e)
	if err != nil {
		return err
	}

	feed.MarkAllRead()

	return e.JSON(http.StatusOK, map[string]any{
		"message":      "All notifications marked as read",
		"unread_count": feed.UnreadCount(),
	})
}

// Delete removes the backing escalation row, then the local notification.
// When the backing delete fails the notification stays and the organizer
// gets an explicit error to retry on.
func (h *NotificationHandler) Delete(e *core.RequestEvent) error {
	feed, err := h.feedFor(e)
	if err != nil {
		return err
	}

	id := e.Request.PathValue("id")
	if err := feed.Delete(e.Request.Context(), id); err != nil {
		if errors.Is(err, status.ErrNotificationNotFound) {
			return apis.NewNotFoundError("Notification not found", err)
		}
		return e.JSON(http.StatusBadGateway, map[string]string{
			"error": "Failed to delete notification. Please try again.",
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":      "Notification deleted",
		"unread_count": feed.UnreadCount(),
	})
}

// Refresh forces a reconciling refetch, the pull-to-refresh path.
func (h *NotificationHandler) Refresh(e *core.RequestEvent) error {
	feed, err := h.feedFor(e)
	if err != nil {
		return err
	}

	if err := feed.Refetch(e.Request.Context()); err != nil {
		return apis.NewInternalServerError("Failed to refresh notifications", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"notifications": feed.Notifications(),
		"unread_count":  feed.UnreadCount(),
		"feed_state":    feed.State().String(),
	})
}
