package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"mx-social/domain/model"
)

// PostStatusEvent represents an SSE payload for post publish updates.
type PostStatusEvent struct {
	Type        string  `json:"type"`
	PostID      int64   `json:"post_id"`
	AccountID   int64   `json:"account_id"`
	Platform    string  `json:"platform,omitempty"`
	Status      string  `json:"status"`
	ExternalRef *string `json:"external_ref,omitempty"`
	Error       *string `json:"error,omitempty"`
}

// Hub maintains per-guard subscribers listening for post status events.
type Hub struct {
	mu     sync.RWMutex
	guards map[string]map[chan PostStatusEvent]struct{}
}

func NewPostHub() *Hub {
	return &Hub{guards: make(map[string]map[chan PostStatusEvent]struct{})}
}

// Serve registers an SSE stream for the authenticated guard (set by the
// auth middleware).
func (h *Hub) Serve(c *gin.Context) {
	guard := c.GetString("guard")
	if guard == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan PostStatusEvent, 8)
	h.addSubscriber(guard, ch)
	defer h.removeSubscriber(guard, ch)

	// Initial comment to keep connection open
	c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	for {
		select {
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: post_status\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) addSubscriber(guard string, ch chan PostStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.guards[guard] == nil {
		h.guards[guard] = make(map[chan PostStatusEvent]struct{})
	}
	h.guards[guard][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(guard string, ch chan PostStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.guards[guard]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.guards, guard)
		}
	}
}

// BroadcastPostStatus broadcasts to all subscribers of the guard that owns
// the post's account.
func (h *Hub) BroadcastPostStatus(post *model.SocialPost) {
	if post == nil || post.Account == nil {
		return
	}
	evt := PostStatusEvent{
		Type:        "post_status",
		PostID:      post.ID,
		AccountID:   post.AccountID,
		Status:      post.Status,
		ExternalRef: post.ExternalID,
		Error:       post.Response,
	}
	if post.Account.Platform != nil {
		evt.Platform = post.Account.Platform.Slug
	}
	if post.Status == model.PostStatusPublished {
		evt.Error = nil
	}
	h.mu.RLock()
	subs := h.guards[post.Account.Guard]
	for ch := range subs {
		select { // non-blocking
		case ch <- evt:
		default:
		}
	}
	h.mu.RUnlock()
}
