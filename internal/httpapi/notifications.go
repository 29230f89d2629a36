package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h Handlers) Notifications(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}
	in, err := h.Notify.Inbox(c.Request.Context(), id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "inbox unavailable"})
		return
	}
	c.JSON(http.StatusOK, in)
}

// MarkNotificationsSeen resets the bell indicator; entries are kept.
func (h Handlers) MarkNotificationsSeen(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}
	if err := h.Notify.MarkSeen(c.Request.Context(), id); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "inbox unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}

type deleteNotificationsRequest struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

// DeleteNotifications removes the selected entries, or everything with {"all": true}.
func (h Handlers) DeleteNotifications(c *gin.Context) {
	id, ok := clientID(c)
	if !ok {
		return
	}
	var req deleteNotificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.All {
		if err := h.Notify.Clear(ctx, id); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "inbox unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"cleared": true})
		return
	}
	n, err := h.Notify.Remove(ctx, id, req.IDs)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "inbox unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}
