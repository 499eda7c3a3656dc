package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"
)

// splitIDAction breaks the tail of a path like "/api/budgets/{id}" or
// "/api/budgets/{id}/status" into the id and the trailing action. The
// action is empty for the bare id form.
func splitIDAction(path, prefix string) (id, action string) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i], rest[i+1:]
	}
	return rest, ""
}

// refTime reads the optional "date" query parameter. Absent means the
// current time; a malformed value is the caller's 400.
func refTime(r *http.Request) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return time.Now(), nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}

// windowDays reads the optional "days" query parameter, defaulting
// to 30.
func windowDays(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("days"))
	if v == "" {
		return 30, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("days: %w", err)
	}
	return n, nil
}
