// Package gatesync is the runtime core of the GateSync feature-flag and dynamic-config
// client. It keeps a locally cached ruleset synchronized from the control service,
// answers gate/config evaluation requests against that cache, and buffers exposure
// telemetry for batched delivery.
package gatesync

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/gatesync/gatesync/config"
	"github.com/gatesync/gatesync/evaluation"
	"github.com/gatesync/gatesync/internal/coordinator"
	"github.com/gatesync/gatesync/internal/events"
	"github.com/gatesync/gatesync/internal/filedata"
	"github.com/gatesync/gatesync/internal/status"
	"github.com/gatesync/gatesync/internal/transport"
	"github.com/gatesync/gatesync/internal/version"
)

// Client is a GateSync client instance.
//
// A Client is created with NewClient, which performs the initial spec download
// synchronously; a Client that was successfully created always has a populated cache.
// All methods are safe for concurrent use.
type Client struct {
	coordinator  *coordinator.Coordinator
	fileSource   *filedata.DataSource
	statusServer *http.Server
	sdkKey       config.SDKKey
	loggers      ldlog.Loggers
	closeOnce    sync.Once
}

// NewClient creates and starts a Client.
//
// The evaluator may be nil, in which case the built-in default-only evaluator is used
// (evaluation.Basic). If the configuration names an offline file, no network calls are
// made and the file is the source of spec data.
//
// NewClient fails if the configuration is invalid, if the initial spec download fails,
// or if the offline file cannot be read.
func NewClient(c config.Config, loggers ldlog.Loggers, evaluator evaluation.Evaluator) (*Client, error) {
	if err := config.ValidateConfig(&c, loggers); err != nil {
		return nil, err
	}
	loggers.SetMinLevel(c.Main.LogLevel.GetOrElse(ldlog.Info))

	offline := c.Main.OfflineFile != ""
	var sender transport.Sender
	if !offline {
		baseURI := config.DefaultBaseURI
		if c.Main.BaseURI.IsDefined() {
			baseURI = c.Main.BaseURI.String()
		}
		sender = transport.NewHTTPSender(c.Main.SDKKey, baseURI, nil, loggers)
	}

	coord, err := coordinator.New(coordinator.Options{
		Sender:        sender,
		Evaluator:     evaluator,
		Offline:       offline,
		PollInterval:  c.Main.PollInterval.GetOrElse(config.DefaultPollInterval),
		FlushInterval: c.Events.FlushInterval.GetOrElse(config.DefaultFlushInterval),
		BatchSize:     c.Events.BatchSize.GetOrElse(config.DefaultEventsBatchSize),
		Loggers:       loggers,
	})
	if err != nil {
		return nil, err
	}

	client := &Client{
		coordinator: coord,
		sdkKey:      c.Main.SDKKey,
		loggers:     loggers,
	}

	if offline {
		fileSource, err := filedata.NewDataSource(c.Main.OfflineFile, coord, 0, loggers)
		if err != nil {
			coord.Close()
			return nil, err
		}
		client.fileSource = fileSource
	}

	if port := c.Main.StatusPort.GetOrElse(0); port > 0 {
		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: status.NewRouter(client.statusRep),
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				loggers.Errorf("Status listener failed: %s", err)
			}
		}()
		client.statusServer = server
	}

	return client, nil
}

// CheckGate evaluates a feature gate for the user, records a gate exposure event, and
// returns the gate value. An exposure event is recorded even when the evaluator falls
// back to a default for an unknown gate.
func (c *Client) CheckGate(user evaluation.User, name string) bool {
	return c.coordinator.CheckGate(user, name)
}

// GetConfig evaluates a dynamic config for the user, records a config exposure event,
// and returns the config value along with the rule that decided it.
func (c *Client) GetConfig(user evaluation.User, name string) evaluation.ConfigResult {
	return c.coordinator.GetConfig(user, name)
}

// LogEvent enqueues a custom telemetry event for delivery with the next flush. It does
// not wait for delivery.
func (c *Client) LogEvent(user evaluation.User, name string, value ldvalue.Value, metadata map[string]string) {
	c.coordinator.LogEvent(events.NewCustomEvent(user, name, value, metadata))
}

// Flush synchronously attempts delivery of all pending telemetry and returns the number
// of events that could not be delivered. A nonzero return value indicates backlog.
func (c *Client) Flush() int {
	return c.coordinator.Flush()
}

// Close shuts the client down, attempting one final telemetry flush. Events that the
// final attempt cannot deliver are discarded.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.statusServer != nil {
			_ = c.statusServer.Close()
		}
		if c.fileSource != nil {
			c.fileSource.Close()
		}
		c.coordinator.Close()
	})
}

func (c *Client) statusRep() status.Rep {
	st := c.coordinator.Status()
	rep := status.Rep{
		Status:        healthyStatus(st),
		SDKKey:        c.sdkKey.Masked(),
		Offline:       st.Offline,
		LastSyncTime:  st.LastSyncTime,
		CachedSpecs:   st.CachedSpecs,
		PendingEvents: st.PendingEvents,
		Version:       version.Version,
	}
	return rep
}

// Offline clients are always healthy; online clients count as healthy once they have a
// server-reported sync timestamp.
func healthyStatus(st coordinator.Status) string {
	if st.Offline || st.LastSyncTime > 0 {
		return status.Healthy
	}
	return status.Degraded
}
