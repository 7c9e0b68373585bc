package transport

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-test-helpers/v3/httphelpers"

	"github.com/gatesync/gatesync/config"
)

type testPayload struct {
	SinceTime int64 `json:"sinceTime"`
}

func TestHTTPSenderPostsJSONWithHeaders(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithJSONResponse(map[string]interface{}{"time": 1}, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		sender := NewHTTPSender(config.SDKKey("my-key"), server.URL, nil, ldlog.NewDisabledLoggers())

		body, err := sender.Request(EndpointDownloadConfigSpecs, testPayload{SinceTime: 1000})
		require.NoError(t, err)
		assert.JSONEq(t, `{"time": 1}`, string(body))

		r := <-requestsCh
		assert.Equal(t, "POST", r.Request.Method)
		assert.Equal(t, "/download_config_specs", r.Request.URL.Path)
		assert.Equal(t, "application/json", r.Request.Header.Get("Content-Type"))
		assert.Equal(t, "my-key", r.Request.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Request.Header.Get("X-GateSync-Session-ID"))
		assert.JSONEq(t, `{"sinceTime": 1000}`, string(r.Body))
	})
}

func TestHTTPSenderReusesSessionIDAcrossRequests(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		sender := NewHTTPSender(config.SDKKey("my-key"), server.URL, nil, ldlog.NewDisabledLoggers())

		_, err := sender.Request(EndpointLogEvents, testPayload{})
		require.NoError(t, err)
		_, err = sender.Request(EndpointLogEvents, testPayload{})
		require.NoError(t, err)

		r1 := <-requestsCh
		r2 := <-requestsCh
		assert.Equal(t, r1.Request.Header.Get("X-GateSync-Session-ID"), r2.Request.Header.Get("X-GateSync-Session-ID"))
	})
}

func TestHTTPSenderErrorStatusIsFailure(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(503), func(server *httptest.Server) {
		sender := NewHTTPSender(config.SDKKey("my-key"), server.URL, nil, ldlog.NewDisabledLoggers())

		_, err := sender.Request(EndpointLogEvents, testPayload{})
		assert.Error(t, err)
	})
}

func TestHTTPSenderConnectionErrorIsFailure(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	server.Close()
	sender := NewHTTPSender(config.SDKKey("my-key"), server.URL, nil, ldlog.NewDisabledLoggers())

	_, err := sender.Request(EndpointDownloadConfigSpecs, testPayload{})
	assert.Error(t, err)
}

func TestHTTPSenderTrimsTrailingSlashFromBaseURI(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		sender := NewHTTPSender(config.SDKKey("my-key"), server.URL+"/", nil, ldlog.NewDisabledLoggers())

		_, err := sender.Request(EndpointLogEvents, testPayload{})
		require.NoError(t, err)

		r := <-requestsCh
		assert.Equal(t, "/rgstr", r.Request.URL.Path)
	})
}
