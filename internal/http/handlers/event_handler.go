// Webhook endpoint for the chat platform's Events API.
//
// The platform delivers events as JSON POSTs and retries any delivery not
// acknowledged with a 2xx within its deadline. The handler therefore
// acknowledges immediately after the envelope is decoded and admitted by
// the recency cache, and runs the actual processing asynchronously. The
// durable receipt check in the award path backstops the cache for
// redeliveries that arrive after the cache has cycled.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/holyguacamole/go-avocado-backend/internal/dedup"
	"github.com/holyguacamole/go-avocado-backend/internal/http/middleware"
	"github.com/holyguacamole/go-avocado-backend/internal/services"
	"github.com/holyguacamole/go-avocado-backend/internal/slack"
)

// processTimeout bounds asynchronous event processing, including the
// notification calls it fans out to.
const processTimeout = 30 * time.Second

// EventProcessor consumes one admitted event callback.
type EventProcessor interface {
	Process(ctx context.Context, cb slack.Callback) error
}

// LeaderboardService serves the season leaderboard for the REST surface.
type LeaderboardService interface {
	Leaderboard(ctx context.Context, limit int) ([]services.LeaderboardEntry, error)
}

// Handlers groups the HTTP endpoints: the event webhook and the public
// leaderboard. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	events EventProcessor
	board  LeaderboardService
	cache  *dedup.Cache
}

// New constructs a Handlers instance bound to the given services and
// recency cache.
func New(events EventProcessor, board LeaderboardService, cache *dedup.Cache) *Handlers {
	return &Handlers{events: events, board: board, cache: cache}
}

// ReceiveEvent handles POST /slack/events.
//
// url_verification envelopes are answered with the echoed challenge.
// event_callback envelopes are admitted through the recency cache exactly
// once per event id and dispatched asynchronously; duplicates and unknown
// envelope types are acknowledged without processing so the platform stops
// retrying.
func (h *Handlers) ReceiveEvent(c *gin.Context) {
	var cb slack.Callback
	if err := c.ShouldBindJSON(&cb); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed event payload")
		return
	}

	switch cb.Type {
	case slack.TypeURLVerification:
		ok(c, http.StatusOK, gin.H{"challenge": cb.Challenge})

	case slack.TypeEventCallback:
		if cb.EventID == "" || cb.Event == nil {
			ok(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		if !h.cache.Admit(cb.EventID) {
			middleware.CountEventDuplicate()
			middleware.LoggerFrom(c).Debug().
				Str("event_id", cb.EventID).
				Msg("duplicate delivery dropped")
			ok(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		middleware.CountEventReceived(cb.Event.EventType())

		// Detach from the request so processing survives the ack while
		// keeping trace propagation intact.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), processTimeout)
		go func() {
			defer cancel()
			if err := h.events.Process(ctx, cb); err != nil {
				middleware.CountEventFailed()
				log.Error().Err(err).
					Str("event_id", cb.EventID).
					Str("event_type", cb.Event.EventType()).
					Msg("event processing failed")
			}
		}()
		ok(c, http.StatusOK, gin.H{"ok": true})

	default:
		ok(c, http.StatusOK, gin.H{"ok": true})
	}
}
