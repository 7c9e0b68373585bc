// Package status provides the optional local HTTP resource that reports the client's
// sync freshness and telemetry backlog.
package status

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Healthy and Degraded are the values of the top-level "status" property.
const (
	Healthy  = "healthy"
	Degraded = "degraded"
)

// Rep is the JSON representation served by the status resource.
type Rep struct {
	Status        string `json:"status"`
	SDKKey        string `json:"sdkKey,omitempty"`
	Offline       bool   `json:"offline,omitempty"`
	LastSyncTime  int64  `json:"lastSyncTime"`
	CachedSpecs   int    `json:"cachedSpecs"`
	PendingEvents int    `json:"pendingEvents"`
	Version       string `json:"version"`
}

// Source produces the current status snapshot on each request.
type Source func() Rep

// NewRouter returns the router serving the status resource at /status.
func NewRouter(source Source) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/status", Handler(source)).Methods("GET")
	return router
}

// Handler returns the handler for the status resource.
func Handler(source Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		data, _ := json.Marshal(source())
		_, _ = w.Write(data)
	})
}
