package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// ColumnCount is the number of value columns in the dataset (a through z).
const ColumnCount = 26

// columnNames holds the value column names in their fixed order.
var columnNames = func() [ColumnCount]string {
	var names [ColumnCount]string
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	return names
}()

// ColumnNames returns the value column names in fixed order (a through z).
func ColumnNames() []string {
	return columnNames[:]
}

// IsValidColumn reports whether name is one of the value columns.
func IsValidColumn(name string) bool {
	return len(name) == 1 && name[0] >= 'a' && name[0] <= 'z'
}

// Row is a single dataset record: a source-assigned identifier plus the
// 26 value columns in fixed order. Rows are immutable once decoded.
type Row struct {
	ID     int64
	Values [ColumnCount]int64
}

// UnmarshalJSON decodes the source's object form ({"id": 1, "a": 42, ...})
// into the fixed column order. Columns omitted by a projection decode as zero.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}

	id, ok := raw["id"]
	if !ok {
		return fmt.Errorf("decode row: missing id field")
	}
	r.ID = id

	for i, name := range columnNames {
		r.Values[i] = raw[name]
	}
	return nil
}

// MarshalJSON encodes the row back into the source's object form.
func (r Row) MarshalJSON() ([]byte, error) {
	raw := make(map[string]int64, ColumnCount+1)
	raw["id"] = r.ID
	for i, name := range columnNames {
		raw[name] = r.Values[i]
	}
	return json.Marshal(raw)
}

// CountResponse is the payload of GET /data/count.
type CountResponse struct {
	Count          int     `json:"count"`
	QueryTimeMS    float64 `json:"query_time_ms"`
	ConnectionPool bool    `json:"connection_pool"`
}

// PageResponse is the payload of GET /data.
type PageResponse struct {
	Data           []Row   `json:"data"`
	Count          int     `json:"count"`
	Limit          int     `json:"limit"`
	Offset         int     `json:"offset"`
	QueryTimeMS    float64 `json:"query_time_ms"`
	ConnectionPool bool    `json:"connection_pool"`
}

// AllResponse is the payload of GET /data/all.
type AllResponse struct {
	Data           []Row   `json:"data"`
	Count          int     `json:"count"`
	QueryTimeMS    float64 `json:"query_time_ms"`
	ConnectionPool bool    `json:"connection_pool"`
}

// RowResponse is the payload of GET /data/{id}.
type RowResponse struct {
	Data           Row     `json:"data"`
	QueryTimeMS    float64 `json:"query_time_ms"`
	ConnectionPool bool    `json:"connection_pool"`
}

// SearchResponse is the payload of GET /data/search.
type SearchResponse struct {
	Data           []Row   `json:"data"`
	Count          int     `json:"count"`
	SearchColumn   string  `json:"search_column"`
	QueryTimeMS    float64 `json:"query_time_ms"`
	ConnectionPool bool    `json:"connection_pool"`
}

// PoolStatus is the payload of GET /api/pool/status.
type PoolStatus struct {
	UseConnectionPool bool `json:"use_connection_pool"`
	PoolInitialized   bool `json:"pool_initialized"`
	PoolMinConn       *int `json:"pool_min_conn"`
	PoolMaxConn       *int `json:"pool_max_conn"`
}

// QueryTime converts a query_time_ms value to a duration.
func QueryTime(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
