package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"edudirectory_backend/internals/normalize"
)

// Error is a non-2xx response. Errors holds per-field messages; a bare
// string list from the backend lands under "_".
type Error struct {
	Status  int
	Code    string
	Message string
	Errors  map[string][]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func newError(status int, env *envelope, hasBody bool) *Error {
	e := &Error{Status: status}
	if hasBody {
		e.Code = env.ErrorCode
		e.Message = strings.TrimSpace(env.Message)
		e.Errors = fieldErrors(env.Errors)
	}
	if e.Message == "" && len(e.Errors) > 0 {
		e.Message = e.flatten()
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	if e.Message == "" {
		e.Message = "Request failed"
	}
	return e
}

func fieldErrors(v any) map[string][]string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		if msgs := normalize.List(t); len(msgs) > 0 {
			return map[string][]string{"_": msgs}
		}
		return nil
	case map[string]any:
		out := make(map[string][]string, len(t))
		for k, msgs := range t {
			out[k] = normalize.List(msgs)
		}
		return out
	default:
		if s := normalize.String(t); s != "" {
			return map[string][]string{"_": {s}}
		}
		return nil
	}
}

func (e *Error) flatten() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		parts = append(parts, e.Errors[k]...)
	}
	return strings.Join(parts, "; ")
}

// Message renders any error for a banner: the backend message for *Error,
// the error text otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}
