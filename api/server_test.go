package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviews-etl/config"
	"reviews-etl/models"
	"reviews-etl/storage"
	"reviews-etl/utils"
)

type stubStore struct {
	summaries map[string]*models.ProductSentimentSummary
	pingErr   error
}

func (s *stubStore) ReplaceReviews([]*models.CleanReview) error               { return nil }
func (s *stubStore) ReplaceRollingSentiment([]*models.ProductRollingSentiment) error { return nil }
func (s *stubStore) Count(string) (int, error)                                { return 0, nil }
func (s *stubStore) Ping() error                                              { return s.pingErr }
func (s *stubStore) Close() error                                             { return nil }

func (s *stubStore) LatestSentiment(productID string) (*models.ProductSentimentSummary, error) {
	if sum, ok := s.summaries[productID]; ok {
		return sum, nil
	}
	return nil, storage.ErrNotFound
}

func testConfig() *config.Config {
	return &config.Config{
		APIHost:        "127.0.0.1",
		APIPort:        8000,
		APIKey:         "test-key",
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
}

func newTestServer(store storage.Store) *Server {
	return NewServer(testConfig(), store, utils.NewLogger(utils.LevelError))
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["database"] != "connected" {
		t.Errorf("body = %v", body)
	}
}

func TestHealthEndpointDatabaseDown(t *testing.T) {
	srv := newTestServer(&stubStore{pingErr: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestSentimentRequiresAPIKey(t *testing.T) {
	srv := newTestServer(&stubStore{})

	tests := []struct {
		name string
		key  string
	}{
		{"missing key", ""},
		{"wrong key", "nope"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sentiment/p1", nil)
		if tt.key != "" {
			req.Header.Set("X-API-Key", tt.key)
		}
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: status = %d, want 403", tt.name, rec.Code)
		}
		var body errorBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Detail != "Invalid API Key" {
			t.Errorf("%s: detail = %q", tt.name, body.Detail)
		}
	}
}

func TestSentimentFound(t *testing.T) {
	store := &stubStore{summaries: map[string]*models.ProductSentimentSummary{
		"p1": {
			ProductID:               "p1",
			ProductName:             "Widget",
			LatestSentimentScore:    4.5,
			RollingAverageSentiment: 0.42,
		},
	}}
	srv := newTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sentiment/p1", nil)
	req.Header.Set("X-API-Key", "test-key")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["product_id"] != "p1" || body["product_name"] != "Widget" {
		t.Errorf("body = %v", body)
	}
	if body["latest_sentiment_score"] != 4.5 {
		t.Errorf("latest_sentiment_score = %v, want 4.5", body["latest_sentiment_score"])
	}
	if body["rolling_average_sentiment"] != 0.42 {
		t.Errorf("rolling_average_sentiment = %v, want 0.42", body["rolling_average_sentiment"])
	}
}

func TestSentimentNotFound(t *testing.T) {
	srv := newTestServer(&stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sentiment/ghost", nil)
	req.Header.Set("X-API-Key", "test-key")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Detail != "No data found for product_id ghost" {
		t.Errorf("detail = %q", body.Detail)
	}
}

func TestRateLimitExceeded(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 2
	srv := NewServer(cfg, &stubStore{}, utils.NewLogger(utils.LevelError))

	var last int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:50000"
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("fifth rapid request status = %d, want 429", last)
	}
}

func TestRateLimiterIsPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request from first IP must pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("second immediate request from same IP must be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other IPs must have their own bucket")
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if got := clientIP(req); got != "203.0.113.7" {
		t.Errorf("clientIP = %q, want first forwarded address", got)
	}
}
