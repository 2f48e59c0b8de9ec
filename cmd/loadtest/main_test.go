package main

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func baseConfig() config {
	return config{
		baseURL:     "http://localhost:8080",
		token:       "token",
		customerID:  "c1",
		productID:   "p1",
		quantity:    1,
		total:       10,
		concurrency: 2,
		timeout:     time.Second,
		mode:        modeCreate,
		cancelRate:  100,
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config)
		valid  bool
	}{
		{"ok", func(*config) {}, true},
		{"missing token", func(c *config) { c.token = "" }, false},
		{"missing product", func(c *config) { c.productID = "" }, false},
		{"zero quantity", func(c *config) { c.quantity = 0 }, false},
		{"negative duration", func(c *config) { c.duration = -time.Second }, false},
		{"zero total without duration", func(c *config) { c.total = 0 }, false},
		{"duration without total", func(c *config) { c.duration = time.Minute; c.total = 0 }, true},
		{"zero concurrency", func(c *config) { c.concurrency = 0 }, false},
		{"zero timeout", func(c *config) { c.timeout = 0 }, false},
		{"cancel rate above 100", func(c *config) { c.cancelRate = 101 }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			tc.mutate(&cfg)
			err := validateConfig(cfg)
			if tc.valid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"create", "create-cancel", "preview", " create "} {
		if _, err := parseMode(valid); err != nil {
			t.Fatalf("expected mode %q to parse, got %v", valid, err)
		}
	}
	if _, err := parseMode("create-pay"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestCollectorReport(t *testing.T) {
	col := newCollector()
	col.record("scenario", 10*time.Millisecond, 0, true)
	col.record("scenario", 30*time.Millisecond, 0, false)
	col.record("create_order", 5*time.Millisecond, http.StatusCreated, true)
	col.record("create_order", 7*time.Millisecond, http.StatusConflict, false)

	startedAt := time.Now()
	result := col.buildReport(startedAt, 2*time.Second)

	if result.TotalScenarios != 2 || result.SuccessScenarios != 1 || result.FailedScenarios != 1 {
		t.Fatalf("unexpected scenario counters: %+v", result)
	}
	if result.ErrorRate != 0.5 {
		t.Fatalf("expected error rate 0.5, got %f", result.ErrorRate)
	}
	if result.RPS != 1.0 {
		t.Fatalf("expected 1 rps, got %f", result.RPS)
	}

	create, ok := result.Methods["create_order"]
	if !ok {
		t.Fatal("create_order method report missing")
	}
	if create.Calls != 2 || create.Success != 1 {
		t.Fatalf("unexpected method report: %+v", create)
	}
	if create.Statuses["201"] != 1 || create.Statuses["409"] != 1 {
		t.Fatalf("unexpected statuses: %+v", create.Statuses)
	}
}

func TestBuildLatencySummary(t *testing.T) {
	if s := buildLatencySummary(nil); s.Max != 0 || s.Avg != 0 {
		t.Fatalf("expected zero summary for empty input, got %+v", s)
	}

	summary := buildLatencySummary([]float64{4, 1, 3, 2, 5})
	if summary.Min != 1 || summary.Max != 5 {
		t.Fatalf("unexpected min/max: %+v", summary)
	}
	if summary.Avg != 3 {
		t.Fatalf("expected avg 3, got %f", summary.Avg)
	}
	if summary.P50 != 3 {
		t.Fatalf("expected p50 3, got %f", summary.P50)
	}
	if math.Abs(summary.P95-4.8) > 1e-9 {
		t.Fatalf("expected p95 4.8, got %f", summary.P95)
	}
}

func TestPercentile(t *testing.T) {
	if percentile(nil, 50) != 0 {
		t.Fatal("expected 0 for empty input")
	}
	if percentile([]float64{7}, 99) != 7 {
		t.Fatal("expected single value")
	}
	if got := percentile([]float64{1, 2, 3, 4}, 50); math.Abs(got-2.5) > 1e-9 {
		t.Fatalf("expected interpolated 2.5, got %f", got)
	}
}

// fakeAPI имитирует конверт ответов основного сервиса.
func fakeAPI(t *testing.T, createStatus int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
			return
		}

		switch {
		case r.URL.Path == "/api/orders" && r.Method == http.MethodPost:
			w.WriteHeader(createStatus)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": createStatus == http.StatusCreated,
				"data":    map[string]string{"id": "order-1"},
			})
		case r.URL.Path == "/api/orders/order-1/cancel" && r.Method == http.MethodPost:
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]string{"id": "order-1"}})
		case r.URL.Path == "/api/cart/preview" && r.Method == http.MethodPost:
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{}})
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
		}
	}))
}

func TestRunScenario_CreateCancel(t *testing.T) {
	server := fakeAPI(t, http.StatusCreated)
	defer server.Close()

	cfg := baseConfig()
	cfg.baseURL = server.URL
	cfg.mode = modeCreateCancel

	client := &apiClient{base: cfg.baseURL, token: cfg.token, client: server.Client()}
	col := newCollector()

	if err := runScenario(client, cfg, 0, col); err != nil {
		t.Fatalf("scenario failed: %v", err)
	}

	result := col.buildReport(time.Now(), time.Second)
	if result.Methods["create_order"].Success != 1 {
		t.Fatalf("expected create success: %+v", result.Methods)
	}
	if result.Methods["cancel_order"].Success != 1 {
		t.Fatalf("expected cancel success: %+v", result.Methods)
	}
	if result.SuccessScenarios != 1 {
		t.Fatalf("unexpected scenario counters: %+v", result)
	}
}

func TestRunScenario_CreateRejected(t *testing.T) {
	server := fakeAPI(t, http.StatusConflict)
	defer server.Close()

	cfg := baseConfig()
	cfg.baseURL = server.URL

	client := &apiClient{base: cfg.baseURL, token: cfg.token, client: server.Client()}
	col := newCollector()

	if err := runScenario(client, cfg, 0, col); err == nil {
		t.Fatal("expected scenario failure")
	}

	result := col.buildReport(time.Now(), time.Second)
	if result.Methods["create_order"].Failed != 1 {
		t.Fatalf("expected create failure: %+v", result.Methods)
	}
	if result.FailedScenarios != 1 {
		t.Fatalf("unexpected scenario counters: %+v", result)
	}
}

func TestRunScenario_Preview(t *testing.T) {
	server := fakeAPI(t, http.StatusCreated)
	defer server.Close()

	cfg := baseConfig()
	cfg.baseURL = server.URL
	cfg.mode = modePreview

	client := &apiClient{base: cfg.baseURL, token: cfg.token, client: server.Client()}
	col := newCollector()

	if err := runScenario(client, cfg, 0, col); err != nil {
		t.Fatalf("scenario failed: %v", err)
	}
	if _, ok := col.methods["create_order"]; ok {
		t.Fatal("preview mode must not create orders")
	}
}
