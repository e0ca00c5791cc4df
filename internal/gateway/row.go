package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oarkflow/mebel/internal/result"
)

type jsonNumber = json.Number

// Row is one backend record decoded loosely, so that renamed and optional
// fields can be coerced the way the backend sends them.
type Row map[string]any

// Raw returns the first key that is present and not null.
func (r Row) Raw(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String returns the first non-empty value among keys.
func (r Row) String(keys ...string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case nil:
		case string:
			if v != "" {
				return v
			}
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Decimal returns the first present numeric value among keys, coercing
// numeric strings. Anything unparseable is zero.
func (r Row) Decimal(keys ...string) decimal.Decimal {
	v, ok := r.Raw(keys...)
	if !ok {
		return decimal.Zero
	}
	return toDecimal(v)
}

// Int returns Decimal truncated to an integer.
func (r Row) Int(keys ...string) int64 {
	return r.Decimal(keys...).IntPart()
}

// Float returns Decimal as float64.
func (r Row) Float(keys ...string) float64 {
	f, _ := r.Decimal(keys...).Float64()
	return f
}

// Time parses the first present timestamp among keys.
func (r Row) Time(keys ...string) time.Time {
	s := r.String(keys...)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err == nil {
			return d
		}
	case bool:
		if n {
			return decimal.NewFromInt(1)
		}
	}
	return decimal.Zero
}

// listEnvelope is the paginated list body. Every field is optional.
type listEnvelope struct {
	Items []Row        `json:"items"`
	Data  []Row        `json:"data"`
	Page  *json.Number `json:"page"`
	Pages *json.Number `json:"pages"`
	Total *json.Number `json:"total"`
	Limit *json.Number `json:"limit"`
}

func decodeRows(body []byte) ([]Row, listEnvelope, error) {
	var env listEnvelope
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, env, nil
	}

	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.UseNumber()
	var probe any
	if err := dec.Decode(&probe); err != nil {
		return nil, env, fmt.Errorf("failed to decode list response: %w", err)
	}

	switch probe.(type) {
	case []any:
		var rows []Row
		if err := unmarshalNumbers(body, &rows); err != nil {
			return nil, env, err
		}
		return rows, env, nil
	case map[string]any:
		if err := unmarshalNumbers(body, &env); err != nil {
			return nil, env, err
		}
		if env.Items != nil {
			return env.Items, env, nil
		}
		return env.Data, env, nil
	}
	return nil, env, nil
}

func unmarshalNumbers(body []byte, v any) error {
	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func intOr(n *json.Number, fallback int) int {
	if n == nil {
		return fallback
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return fallback
	}
	return int(d.IntPart())
}

// pagination takes the backend's numbers when present and only derives the
// missing ones.
func (env listEnvelope) pagination(page, limit, mapped int) result.Pagination {
	perPage := intOr(env.Limit, limit)
	total := intOr(env.Total, mapped)

	pages := 0
	if env.Pages != nil {
		pages = intOr(env.Pages, 0)
	} else {
		divisor := intOr(env.Limit, 0)
		if divisor == 0 {
			divisor = limit
		}
		pages = result.TotalPages(intOr(env.Total, 0), divisor)
	}

	return result.Pagination{
		CurrentPage:  intOr(env.Page, page),
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: perPage,
	}
}

// DecodeRows extracts the records of a list body, either a bare array or an
// object carrying items or data.
func DecodeRows(body []byte) ([]Row, error) {
	rows, _, err := decodeRows(body)
	return rows, err
}

// DecodeRecord extracts a single record, unwrapping a "data" envelope.
func DecodeRecord(body []byte) (Row, error) {
	var row Row
	if len(strings.TrimSpace(string(body))) == 0 {
		return row, nil
	}
	if err := unmarshalNumbers(body, &row); err != nil {
		return nil, err
	}
	if inner, ok := row["data"].(map[string]any); ok {
		row = Row(inner)
	}
	return row, nil
}
