// Package normalize coerces backend fields that may arrive as a real value,
// a comma-joined string or a JSON-encoded string into one canonical form.
// Both the multipart parser on the server and the API client decode through it.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

const NotAvailable = "N/A"

const (
	Yes = "Yes"
	No  = "No"
)

// List coerces v into a list of trimmed, non-empty strings.
// "Science, Commerce, Arts" and `["Science","Commerce","Arts"]` both give
// [Science Commerce Arts]; a []string is returned unchanged.
func List(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := strings.TrimSpace(String(e)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case json.RawMessage:
		return List(string(t))
	case []byte:
		return List(string(t))
	case string:
		return listFromString(t)
	default:
		if s := strings.TrimSpace(String(t)); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

func listFromString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	if strings.HasPrefix(s, "[") {
		var arr []any
		if err := sonic.UnmarshalString(s, &arr); err == nil {
			return List(arr)
		}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Object coerces v into a flat string map. A JSON string is parsed; when v
// cannot be read as an object the returned map is a copy of def.
func Object(v any, def map[string]string) map[string]string {
	switch t := v.(type) {
	case map[string]string:
		return withDefaults(t, def)
	case map[string]any:
		m := make(map[string]string, len(t))
		for k, e := range t {
			m[k] = String(e)
		}
		return withDefaults(m, def)
	case json.RawMessage:
		return Object(string(t), def)
	case []byte:
		return Object(string(t), def)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return copyMap(def)
		}
		var m map[string]any
		if err := sonic.UnmarshalString(s, &m); err != nil {
			return copyMap(def)
		}
		return Object(m, def)
	default:
		return copyMap(def)
	}
}

func withDefaults(m, def map[string]string) map[string]string {
	out := copyMap(def)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// TriState maps truthy/falsy inputs to "Yes"/"No"; anything else is absent ("").
func TriState(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return Yes
		}
		return No
	case nil:
		return ""
	}
	switch strings.ToLower(strings.TrimSpace(String(v))) {
	case "yes", "y", "true", "1", "on":
		return Yes
	case "no", "n", "false", "0", "off":
		return No
	default:
		return ""
	}
}

// Flags coerces an infrastructure object into {flag: "Yes"|"No"}, dropping
// absent entries.
func Flags(v any) map[string]string {
	raw := Object(v, nil)
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		if ts := TriState(val); ts != "" {
			out[k] = ts
		}
	}
	return out
}

// Float returns nil for absent, blank or non-numeric input.
func Float(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		p, err := t.Float64()
		if err != nil {
			return nil
		}
		f = p
	case *float64:
		return t
	default:
		s := strings.TrimSpace(String(t))
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return nil
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = p
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Int returns 0,false for absent or non-numeric input.
func Int(v any) (int, bool) {
	f := Float(v)
	if f == nil {
		return 0, false
	}
	return int(*f), true
}

// String renders scalars the way the backend would have sent them.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// OrNA returns s, or "N/A" when s is blank.
func OrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

// JoinOrNA joins a list for display, "N/A" when empty.
func JoinOrNA(items []string) string {
	if len(items) == 0 {
		return NotAvailable
	}
	return strings.Join(items, ", ")
}

// FormatAmount renders a nullable fee.
func FormatAmount(f *float64) string {
	if f == nil {
		return NotAvailable
	}
	if *f == math.Trunc(*f) {
		return "₹" + strconv.FormatFloat(*f, 'f', 0, 64)
	}
	return "₹" + strconv.FormatFloat(*f, 'f', 2, 64)
}
