package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/holyguacamole/go-avocado-backend/internal/config"
	"github.com/holyguacamole/go-avocado-backend/internal/repo"
	"github.com/holyguacamole/go-avocado-backend/internal/slack"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("router_test_%d.db", time.Now().UnixNano()))
	db, err := repo.OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := config.Config{
		Port:        "8080",
		APIBasePath: "/api/v1",
		DBPath:      dsn,
		Slack: config.SlackConfig{
			BotUserID: "UBOT",
			APIBase:   "http://127.0.0.1:0", // never reached in these tests
		},
		Award: config.AwardConfig{
			DailyCap:      5,
			QuotaTimezone: "America/Chicago",
			SeasonMonth:   time.January,
			SeasonDay:     1,
			DedupSize:     100,
		},
		RateRPS:   1000,
		RateBurst: 1000,
	}

	r := gin.New()
	RegisterRoutes(r, db, slack.NewClient(cfg.Slack.APIBase, "test-token"), cfg)
	return r
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRouter_MetricsExposed(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("expected prometheus exposition output")
	}
}

func TestRouter_UnknownRouteEnvelope(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["code"] != "not_found" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestRouter_WebhookURLVerification(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/slack/events",
		strings.NewReader(`{"type":"url_verification","challenge":"xyzzy"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["challenge"] != "xyzzy" {
		t.Fatalf("challenge not echoed: %v", body)
	}
}

func TestRouter_LeaderboardEmpty(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
