package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/gatesync/gatesync/config"
	"github.com/gatesync/gatesync/internal/version"
)

const (
	sessionIDHeader  = "X-GateSync-Session-ID"
	sdkVersionHeader = "X-GateSync-SDK-Version"
)

func errRequestFailed(endpoint string, err error) error {
	return fmt.Errorf("request to %q failed: %w", endpoint, err)
}

func errRequestStatus(endpoint string, status int) error {
	return fmt.Errorf("request to %q returned HTTP %d", endpoint, status)
}

// HTTPSender is the standard implementation of Sender. It posts JSON bodies to the
// control service, authorizing with the SDK credential and tagging every request with a
// per-process session ID.
//
// No request timeout is set on the default client; an unresponsive control service
// blocks the calling goroutine until the connection fails at the transport level.
type HTTPSender struct {
	baseURI    string
	credential config.SDKCredential
	client     *http.Client
	sessionID  string
	userAgent  string
	loggers    ldlog.Loggers
}

// NewHTTPSender creates an HTTPSender for the given base URI. Passing a nil client uses
// a default client.
func NewHTTPSender(credential config.SDKCredential, baseURI string, client *http.Client, loggers ldlog.Loggers) *HTTPSender {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPSender{
		baseURI:    strings.TrimRight(baseURI, "/"),
		credential: credential,
		client:     client,
		sessionID:  uuid.NewString(),
		userAgent:  "GateSyncGoClient/" + version.Version,
		loggers:    loggers,
	}
}

// Request implements Sender by posting the payload to baseURI/endpoint.
func (s *HTTPSender) Request(endpoint string, payload interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errRequestFailed(endpoint, err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURI+"/"+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, errRequestFailed(endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set(sessionIDHeader, s.sessionID)
	req.Header.Set(sdkVersionHeader, version.Version)
	if s.credential != nil && s.credential.GetAuthorizationHeaderValue() != "" {
		req.Header.Set("Authorization", s.credential.GetAuthorizationHeaderValue())
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errRequestFailed(endpoint, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errRequestFailed(endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errRequestStatus(endpoint, resp.StatusCode)
	}
	return body, nil
}
