package main

import (
	"context"
	"net/http"
	"sort"
	"time"

	. "messenger/pkg/common"
	"messenger/pkg/logger"
)

type healthCheck func(context.Context) error

// healthHandler pings every backing store and answers 503 naming the first
// one that fails.
func healthHandler(checks map[string]healthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.Log(r.Context()).Warnf("health: %s is unavailable: %v", name, err)
				WriteMsg(w, name+" is unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		WriteMsg(w, "ok", http.StatusOK)
	}
}
