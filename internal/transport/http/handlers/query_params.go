package handlers

import (
	"net/http"
	"strconv"
	"strings"
)

func parsePositiveIntQuery(r *http.Request, key string) (value int, present bool, errMsg string) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		if r.URL.Query().Has(key) {
			return 0, true, "invalid"
		}
		return 0, false, ""
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, true, "invalid"
	}

	return parsed, true, ""
}
