package observability

import (
	"encoding/json"
	"net/http"
)

// Handler serves the metrics snapshot as JSON.
func Handler(metrics *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(metrics.SnapshotNow()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
