// Leaderboard REST endpoint.
//
// GET /api/v1/leaderboard returns the season's top recipients as JSON, the
// same data the chat command renders as text. The optional `limit` query
// parameter caps the number of entries; it defaults to 10.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard handles GET /leaderboard?limit=N.
func (h *Handlers) GetLeaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.board.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not load leaderboard")
		return
	}
	ok(c, http.StatusOK, gin.H{"entries": entries})
}
