package httpx

import (
	"net/http"

	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
)

type healthResponse struct {
	Status  string            `json:"status"`
	Session domainauth.Status `json:"session"`
	Settled bool              `json:"settled"`
}

// healthHandler reports liveness and the session machine's progress. It answers 200 while the
// session is still restoring.
func healthHandler(sessions SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			return
		}
		snap := sessions.Snapshot()
		WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Session: snap.Status, Settled: snap.Settled()})
	}
}
