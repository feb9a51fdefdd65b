package twelvedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewTwelveDataQuotes(t *testing.T) {
	t.Parallel()

	cfg := Config{
		TwelveDataAPIKey: "test-key",
		BaseURL:          "https://api.test.com",
		Timeout:          10 * time.Second,
	}

	quotes := NewTwelveDataQuotes(cfg, &http.Client{})

	if quotes == nil {
		t.Fatal("expected non-nil client")
	}
	if quotes.cfg.TwelveDataAPIKey != cfg.TwelveDataAPIKey {
		t.Errorf("expected API key %q, got %q", cfg.TwelveDataAPIKey, quotes.cfg.TwelveDataAPIKey)
	}
}

func TestToAPISymbol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"EURUSD", "EUR/USD"},
		{"XAUUSD", "XAU/USD"},
		{"BTCUSD", "BTC/USD"},
		{"AAPL", "AAPL"},
		{"EUR/USD", "EUR/USD"},
		{"eurusd", "eurusd"},
		{"7203.T", "7203.T"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := ToAPISymbol(tt.in); got != tt.want {
				t.Errorf("ToAPISymbol(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTwelveDataQuotes_GetQuotes_Single(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" {
			t.Errorf("expected path /quote, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbol") != "EUR/USD" {
			t.Errorf("expected symbol EUR/USD, got %s", r.URL.Query().Get("symbol"))
		}
		if r.URL.Query().Get("apikey") != "test-key" {
			t.Errorf("expected apikey test-key, got %s", r.URL.Query().Get("apikey"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"symbol": "EUR/USD",
			"name": "Euro / US Dollar",
			"timestamp": 1736931600,
			"close": "1.08530",
			"change": "0.00120",
			"percent_change": "0.11"
		}`))
	}))
	defer server.Close()

	q := NewTwelveDataQuotes(Config{TwelveDataAPIKey: "test-key", BaseURL: server.URL}, server.Client())

	snaps, err := q.GetQuotes(context.Background(), []string{"EURUSD"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(snaps))
	}
	s := snaps[0]
	if s.Symbol != "EURUSD" {
		t.Errorf("expected symbol EURUSD, got %s", s.Symbol)
	}
	if s.Last == nil || *s.Last != 1.0853 {
		t.Errorf("expected last 1.0853, got %v", s.Last)
	}
	if s.Change == nil || *s.Change != 0.0012 {
		t.Errorf("expected change 0.0012, got %v", s.Change)
	}
	if s.Bid != nil || s.Ask != nil {
		t.Error("expected bid/ask to be empty")
	}
	if !s.UpdatedAt.Equal(time.Unix(1736931600, 0)) {
		t.Errorf("unexpected UpdatedAt %v", s.UpdatedAt)
	}
}

func TestTwelveDataQuotes_GetQuotes_Batch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "EUR/USD,AAPL,NOPE" {
			t.Errorf("expected joined symbols, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"EUR/USD": {"symbol": "EUR/USD", "close": "1.08530", "change": "-0.00200"},
			"AAPL": {"symbol": "AAPL", "close": "187.10", "change": ""},
			"NOPE": {"code": 404, "message": "symbol not found", "status": "error"}
		}`))
	}))
	defer server.Close()

	q := NewTwelveDataQuotes(Config{BaseURL: server.URL}, server.Client())

	snaps, err := q.GetQuotes(context.Background(), []string{"EURUSD", "AAPL", "NOPE", "EURUSD"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(snaps))
	}
	if snaps[0].Symbol != "EURUSD" || snaps[1].Symbol != "AAPL" {
		t.Errorf("unexpected order: %s, %s", snaps[0].Symbol, snaps[1].Symbol)
	}
	if snaps[0].Change == nil || *snaps[0].Change != -0.002 {
		t.Errorf("expected change -0.002, got %v", snaps[0].Change)
	}
	if snaps[1].Change != nil {
		t.Errorf("expected nil change for empty string, got %v", *snaps[1].Change)
	}
}

func TestTwelveDataQuotes_GetQuotes_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
	}{
		{"bad request", http.StatusBadRequest},
		{"unauthorized", http.StatusUnauthorized},
		{"too many requests", http.StatusTooManyRequests},
		{"internal server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			q := NewTwelveDataQuotes(Config{BaseURL: server.URL}, server.Client())

			_, err := q.GetQuotes(context.Background(), []string{"EURUSD"})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "twelvedata http") {
				t.Errorf("expected HTTP error message, got %v", err)
			}
		})
	}
}

func TestTwelveDataQuotes_GetQuotes_APIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code": 401, "message": "Invalid API key", "status": "error"}`))
	}))
	defer server.Close()

	q := NewTwelveDataQuotes(Config{TwelveDataAPIKey: "invalid-key", BaseURL: server.URL}, server.Client())

	_, err := q.GetQuotes(context.Background(), []string{"EURUSD", "USDJPY"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Invalid API key") {
		t.Errorf("expected API error message, got %v", err)
	}
}

func TestTwelveDataQuotes_GetQuotes_MalformedValueSkipped(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"EUR/USD": {"symbol": "EUR/USD", "close": "abc"},
			"USD/JPY": {"symbol": "USD/JPY", "close": "151.20"}
		}`))
	}))
	defer server.Close()

	q := NewTwelveDataQuotes(Config{BaseURL: server.URL}, server.Client())

	snaps, err := q.GetQuotes(context.Background(), []string{"EURUSD", "USDJPY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Symbol != "USDJPY" {
		t.Errorf("expected only USDJPY, got %+v", snaps)
	}
}

func TestTwelveDataQuotes_GetQuotes_InvalidJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{invalid json`))
	}))
	defer server.Close()

	q := NewTwelveDataQuotes(Config{BaseURL: server.URL}, server.Client())

	if _, err := q.GetQuotes(context.Background(), []string{"EURUSD"}); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestTwelveDataQuotes_GetQuotes_Empty(t *testing.T) {
	t.Parallel()

	q := NewTwelveDataQuotes(Config{BaseURL: "http://127.0.0.1:0"}, &http.Client{})

	snaps, err := q.GetQuotes(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("expected no quotes, got %d", len(snaps))
	}
}

func TestTwelveDataQuotes_GetQuotes_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	q := NewTwelveDataQuotes(Config{BaseURL: server.URL}, server.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := q.GetQuotes(ctx, []string{"EURUSD"}); err == nil {
		t.Fatal("expected error due to context cancellation, got nil")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("TWELVE_DATA_BASE_URL", "")
	t.Setenv("TWELVE_DATA_RATE_LIMIT", "55")

	cfg := LoadConfig()

	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Timeout)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %q", cfg.BaseURL)
	}
	if cfg.RateLimit != 55 {
		t.Errorf("expected rate limit 55, got %d", cfg.RateLimit)
	}
}
