// Package testutil provides testing utilities for the rowview client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rowview/rowview/pkg/api"
)

// MaxPageLimit mirrors the server-enforced cap on the limit parameter.
const MaxPageLimit = 100000

// MockSource is a configurable in-memory data source serving the same
// endpoints as the real backend: /data/count, /data, /data/all,
// /data/search, /data/{id} and /api/pool/status.
type MockSource struct {
	server *httptest.Server
	rows   []api.Row

	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// PageDelay, when set, is called with each page request's offset and the
	// request is delayed by the returned duration. Used to force completion
	// order to differ from request order in parallel tests.
	PageDelay func(offset int) time.Duration

	// QueryTimeMS is the per-request query_time_ms value to report.
	QueryTimeMS float64

	// ConnectionPool is the connection_pool flag to report.
	ConnectionPool bool

	// Tracking
	RequestCount int
	PageOffsets  []int
}

// GenerateRows produces n deterministic rows with ids 1..n and column values
// in [1, 1000], matching the shape of the real dataset.
func GenerateRows(n int) []api.Row {
	rows := make([]api.Row, n)
	for i := range rows {
		rows[i].ID = int64(i + 1)
		for c := 0; c < api.ColumnCount; c++ {
			rows[i].Values[c] = int64((i*31+c*7)%1000 + 1)
		}
	}
	return rows
}

// NewMockSource creates a mock data source over the given rows.
func NewMockSource(rows []api.Row) *MockSource {
	m := &MockSource{
		rows:        rows,
		handlers:    make(map[string]http.HandlerFunc),
		QueryTimeMS: 1.5,
	}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.RequestCount++
		m.mu.Unlock()

		m.mu.RLock()
		handler, exists := m.handlers[r.URL.Path]
		m.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		m.defaultHandler(w, r)
	}))

	return m
}

// URL returns the mock server URL.
func (m *MockSource) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSource) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PageOffsets = nil
}

// SetHandler overrides the handler for a specific path.
func (m *MockSource) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// FailWith makes a path answer with a fixed status code.
func (m *MockSource) FailWith(path string, status int) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"detail": "forced failure"}`)
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockSource) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPageOffsets returns the offsets of all /data page requests, in the
// order the server received them.
func (m *MockSource) GetPageOffsets() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int, len(m.PageOffsets))
	copy(out, m.PageOffsets)
	return out
}

func (m *MockSource) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/data/count":
		m.writeJSON(w, map[string]any{
			"count":           len(m.rows),
			"query_time_ms":   m.QueryTimeMS,
			"connection_pool": m.ConnectionPool,
		})

	case r.URL.Path == "/data/all":
		m.writeJSON(w, map[string]any{
			"data":            m.rows,
			"count":           len(m.rows),
			"query_time_ms":   m.QueryTimeMS,
			"connection_pool": m.ConnectionPool,
		})

	case r.URL.Path == "/data/search":
		m.handleSearch(w, r)

	case r.URL.Path == "/data":
		m.handlePage(w, r)

	case r.URL.Path == "/api/pool/status":
		m.writeJSON(w, map[string]any{
			"use_connection_pool": m.ConnectionPool,
			"pool_initialized":    m.ConnectionPool,
		})

	case strings.HasPrefix(r.URL.Path, "/data/"):
		m.handleRowByID(w, r)

	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"detail": "not found"}`)
	}
}

func (m *MockSource) handlePage(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 100)
	offset := intQuery(r, "offset", 0)

	if limit < 1 || limit > MaxPageLimit || offset < 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprintf(w, `{"detail": "invalid limit or offset"}`)
		return
	}

	m.mu.Lock()
	m.PageOffsets = append(m.PageOffsets, offset)
	delay := m.PageDelay
	m.mu.Unlock()

	if delay != nil {
		time.Sleep(delay(offset))
	}

	end := offset + limit
	if offset > len(m.rows) {
		offset = len(m.rows)
	}
	if end > len(m.rows) {
		end = len(m.rows)
	}
	page := m.rows[offset:end]

	m.writeJSON(w, map[string]any{
		"data":            page,
		"count":           len(page),
		"limit":           limit,
		"offset":          offset,
		"query_time_ms":   m.QueryTimeMS,
		"connection_pool": m.ConnectionPool,
	})
}

func (m *MockSource) handleSearch(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	if !api.IsValidColumn(column) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, `{"detail": "invalid column name: %s"}`, column)
		return
	}
	col := int(column[0] - 'a')
	limit := intQuery(r, "limit", 100)

	var exact, min, max *int64
	if v := r.URL.Query().Get("exact_value"); v != "" {
		n, _ := strconv.ParseInt(v, 10, 64)
		exact = &n
	}
	if v := r.URL.Query().Get("min_value"); v != "" {
		n, _ := strconv.ParseInt(v, 10, 64)
		min = &n
	}
	if v := r.URL.Query().Get("max_value"); v != "" {
		n, _ := strconv.ParseInt(v, 10, 64)
		max = &n
	}
	if exact == nil && min == nil && max == nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, `{"detail": "missing search condition"}`)
		return
	}

	var matches []api.Row
	for _, row := range m.rows {
		v := row.Values[col]
		if exact != nil && v != *exact {
			continue
		}
		if exact == nil {
			if min != nil && v < *min {
				continue
			}
			if max != nil && v > *max {
				continue
			}
		}
		matches = append(matches, row)
		if len(matches) >= limit {
			break
		}
	}

	m.writeJSON(w, map[string]any{
		"data":            matches,
		"count":           len(matches),
		"search_column":   column,
		"query_time_ms":   m.QueryTimeMS,
		"connection_pool": m.ConnectionPool,
	})
}

func (m *MockSource) handleRowByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/data/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprintf(w, `{"detail": "invalid id"}`)
		return
	}

	for _, row := range m.rows {
		if row.ID == id {
			m.writeJSON(w, map[string]any{
				"data":            row,
				"query_time_ms":   m.QueryTimeMS,
				"connection_pool": m.ConnectionPool,
			})
			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, `{"detail": "row %d not found"}`, id)
}

func (m *MockSource) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(fmt.Sprintf("mock source encode: %v", err))
	}
}

func intQuery(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
