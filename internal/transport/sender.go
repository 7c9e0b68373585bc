// Package transport performs the HTTP calls to the GateSync control service. The
// coordinator only sees the Sender interface; everything about URLs, headers, and
// status codes stays here.
package transport

import (
	"encoding/json"
)

// Endpoints of the control service used by the client core.
const (
	// EndpointDownloadConfigSpecs returns the spec document for rules changed since a
	// given server timestamp.
	EndpointDownloadConfigSpecs = "download_config_specs"
	// EndpointLogEvents ingests a batch of telemetry events.
	EndpointLogEvents = "rgstr"
)

// Sender performs a single request to a control service endpoint. The payload is
// serialized as the JSON request body. A non-nil error covers every kind of failure -
// connection errors and non-2xx responses alike; callers do not distinguish between
// them.
type Sender interface {
	Request(endpoint string, payload interface{}) (json.RawMessage, error)
}
