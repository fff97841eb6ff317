package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when normalizing a string-shaped date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
}

// NormalizeDate reduces the date shapes seen across the legacy database,
// Firestore and the backup snapshot (time.Time, timestamp-like maps, epoch
// numbers, strings) to epoch seconds. The second return is false when the
// value is unparseable.
func NormalizeDate(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case time.Time:
		if t.IsZero() {
			return 0, false
		}
		return t.Unix(), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return 0, false
		}
		return t.Unix(), true
	case map[string]any:
		// Firestore Timestamp serialized as {seconds, nanoseconds}.
		if secs, ok := t["seconds"]; ok {
			return NormalizeDate(secs)
		}
		return 0, false
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.ParseInLocation(layout, t, time.Local); err == nil {
				return parsed.Unix(), true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// ToInt coerces loosely-typed numeric values (as stored by the document
// store or found in snapshot JSON) to an int. Unparseable values yield 0.
func ToInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
		return 0
	default:
		return 0
	}
}

// ToString renders a loosely-typed legacy value for display and identity
// derivation. Numbers keep their shortest representation so "45" and 45
// derive the same sequence value.
func ToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", t)
	}
}
