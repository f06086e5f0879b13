package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Number is a float64 that tolerates the loose numeric encodings found in
// ledger documents: JSON numbers, numeric strings (comma or dot decimals),
// and anything else, which decodes as 0.
type Number float64

func (n Number) Float() float64 { return float64(n) }

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	*n = Number(CoerceFloat(raw))
	return nil
}

// CoerceFloat converts an arbitrary decoded value into a finite float64,
// falling back to 0.
func CoerceFloat(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case json.Number:
		f, _ = t.Float64()
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", "."), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if t {
			f = 1
		}
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Timestamp accepts RFC3339 strings, epoch milliseconds and Firestore
// timestamp objects ({"_seconds","_nanoseconds"} or {"seconds","nanos"}).
// It encodes as an RFC3339 string, or null when zero.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	t.Time = CoerceTime(raw)
	return nil
}

// CoerceTime converts an arbitrary decoded value into a time, zero when it
// cannot be interpreted.
func CoerceTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	case float64:
		return time.UnixMilli(int64(t))
	case int64:
		return time.UnixMilli(t)
	case map[string]any:
		secs, ok := firstNumber(t, "_seconds", "seconds")
		if !ok {
			return time.Time{}
		}
		nanos, _ := firstNumber(t, "_nanoseconds", "nanos", "nanoseconds")
		return time.Unix(int64(secs), int64(nanos))
	}
	return time.Time{}
}

func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return CoerceFloat(v), true
		}
	}
	return 0, false
}
