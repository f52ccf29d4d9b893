// Package testhelper provides a fake upstream market-data server for tests.
// It answers the Binance klines endpoint and the Yahoo Finance chart endpoint
// from canned data.
package testhelper

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
)

// MockMarketServer serves canned klines and chart responses.
type MockMarketServer struct {
	mu sync.RWMutex

	server *httptest.Server

	klines   map[string][]types.Bar
	charts   map[string]string
	statuses map[string]int
	requests []url.URL
}

// NewMockMarketServer starts a server on a random local port. Call Close when done.
func NewMockMarketServer() *MockMarketServer {
	s := &MockMarketServer{
		mu:       sync.RWMutex{},
		klines:   make(map[string][]types.Bar),
		charts:   make(map[string]string),
		statuses: make(map[string]int),
		requests: nil,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/v3/klines", s.handleKlines).Methods("GET")
	router.HandleFunc("/v8/finance/chart/{ticker}", s.handleChart).Methods("GET")

	s.server = httptest.NewServer(router)

	return s
}

// URL returns the base URL of the server.
func (s *MockMarketServer) URL() string {
	return s.server.URL
}

// Close shuts the server down.
func (s *MockMarketServer) Close() {
	s.server.Close()
}

// SetKlines sets the bars returned for a Binance symbol.
func (s *MockMarketServer) SetKlines(symbol string, bars []types.Bar) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.klines[symbol] = bars
}

// SetChart sets the raw chart JSON returned for a Yahoo ticker.
func (s *MockMarketServer) SetChart(ticker string, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.charts[ticker] = body
}

// SetStatus forces an HTTP status for a Binance symbol or Yahoo ticker.
func (s *MockMarketServer) SetStatus(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses[key] = status
}

// Requests returns every request URL seen so far.
func (s *MockMarketServer) Requests() []url.URL {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]url.URL, len(s.requests))
	copy(out, s.requests)

	return out
}

func (s *MockMarketServer) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, *r.URL)
}

func (s *MockMarketServer) handleKlines(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	symbol := r.URL.Query().Get("symbol")
	interval := r.URL.Query().Get("interval")

	if symbol == "" || interval == "" {
		http.Error(w, `{"code":-1102,"msg":"Mandatory parameter was not sent"}`, http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	status, forced := s.statuses[symbol]
	bars := s.klines[symbol]
	s.mu.RUnlock()

	if forced {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"code":-1000,"msg":"forced status %d"}`, status)

		return
	}

	limit := len(bars)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n < limit {
			limit = n
		}
	}

	bars = bars[len(bars)-limit:]

	response := make([][]any, 0, len(bars))
	for _, b := range bars {
		openTime := b.Time.UnixMilli()
		response = append(response, []any{
			openTime,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
			openTime + 59_999,
			"0",
			0,
			"0",
			"0",
			"0",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func (s *MockMarketServer) handleChart(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	ticker := mux.Vars(r)["ticker"]

	s.mu.RLock()
	status, forced := s.statuses[ticker]
	body, ok := s.charts[ticker]
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")

	if forced {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"chart":{"result":null,"error":{"code":"Forced","description":"forced status %d"}}}`, status)

		return
	}

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)

		return
	}

	fmt.Fprint(w, body)
}

// ChartJSON renders bars as a Yahoo chart response body.
func ChartJSON(bars []types.Bar) string {
	timestamps := make([]int64, len(bars))
	opens := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))

	for i, b := range bars {
		timestamps[i] = b.Time.Unix()
		opens[i] = b.Open
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	body := map[string]any{
		"chart": map[string]any{
			"result": []any{
				map[string]any{
					"meta":      map[string]any{"currency": "USD"},
					"timestamp": timestamps,
					"indicators": map[string]any{
						"quote": []any{
							map[string]any{
								"open":   opens,
								"high":   highs,
								"low":    lows,
								"close":  closes,
								"volume": volumes,
							},
						},
					},
				},
			},
			"error": nil,
		},
	}

	raw, _ := json.Marshal(body)

	return string(raw)
}
