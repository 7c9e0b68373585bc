// Package coordinator contains the serialized state owner of the client core. One
// goroutine processes every evaluation request, custom event, flush, and sync tick in
// arrival order, so the spec cache, the event buffer, and the sync metadata never need
// external locking.
package coordinator

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/gatesync/gatesync/evaluation"
	"github.com/gatesync/gatesync/internal/events"
	"github.com/gatesync/gatesync/internal/store"
	"github.com/gatesync/gatesync/internal/transport"
)

const inputQueueSize = 100

func errInitialSyncFailed(err error) error {
	return fmt.Errorf("initial spec download failed: %w", err)
}

// Options configures a Coordinator.
type Options struct {
	// Sender performs the control service calls. It must be set unless Offline is true.
	Sender transport.Sender
	// Evaluator decides gate/config values. If nil, evaluation.Basic() is used.
	Evaluator evaluation.Evaluator
	// Offline disables all network activity: no initial fetch, no sync timer, and
	// flushes discard events instead of delivering them. Spec data is expected to come
	// from ApplySpecData.
	Offline bool

	PollInterval  time.Duration
	FlushInterval time.Duration
	BatchSize     int

	Loggers ldlog.Loggers
}

// Status is a snapshot of the coordinator's sync and telemetry state.
type Status struct {
	LastSyncTime  int64
	PendingEvents int
	CachedSpecs   int
	Offline       bool
}

type syncRequest struct {
	SinceTime int64 `json:"sinceTime"`
}

type logEventsRequest struct {
	Events []events.Event `json:"events"`
}

// Messages processed by the coordinator goroutine. Reply channels are buffered so the
// handler never blocks on a caller that has gone away.
type checkGateReq struct {
	user  evaluation.User
	name  string
	reply chan bool
}

type getConfigReq struct {
	user  evaluation.User
	name  string
	reply chan evaluation.ConfigResult
}

type logEventReq struct {
	event events.Event
}

type flushReq struct {
	reply chan int
}

type statusReq struct {
	reply chan Status
}

type applySpecDataMsg struct {
	data []byte
}

// Coordinator owns the spec store, the event buffer, and the sync timestamp. All state
// transitions happen on its single goroutine; external callers communicate through the
// input queue.
//
// Network calls (spec downloads and event delivery) also run on that goroutine, so a
// slow control service delays every queued operation until the call completes. That
// latency coupling is deliberate: it keeps the core free of locks and makes the
// observable ordering of operations trivial to reason about.
type Coordinator struct {
	specs     *store.SpecStore
	buffer    *events.Buffer
	sender    transport.Sender
	evaluator evaluation.Evaluator
	offline   bool

	pollInterval  time.Duration
	flushInterval time.Duration

	lastSyncTime int64

	inputQueue chan interface{}
	closer     chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup

	warnedOfflineDiscard bool

	loggers ldlog.Loggers
}

// New creates a Coordinator and performs the initial spec download. The initial
// download is synchronous and fatal: if the transport call fails, no Coordinator is
// returned. A malformed initial response body is not fatal; it leaves the cache empty
// and the next scheduled sync requests a full document.
func New(opts Options) (*Coordinator, error) {
	loggers := opts.Loggers
	loggers.SetPrefix("Coordinator:")

	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = evaluation.Basic()
	}

	c := &Coordinator{
		specs:         store.NewSpecStore(),
		buffer:        events.NewBuffer(opts.BatchSize),
		sender:        opts.Sender,
		evaluator:     evaluator,
		offline:       opts.Offline,
		pollInterval:  opts.PollInterval,
		flushInterval: opts.FlushInterval,
		inputQueue:    make(chan interface{}, inputQueueSize),
		closer:        make(chan struct{}),
		loggers:       loggers,
	}
	if c.pollInterval <= 0 {
		c.pollInterval = time.Minute
	}
	if c.flushInterval <= 0 {
		c.flushInterval = time.Minute
	}

	if !c.offline {
		body, err := c.sender.Request(transport.EndpointDownloadConfigSpecs, syncRequest{SinceTime: 0})
		if err != nil {
			return nil, errInitialSyncFailed(err)
		}
		c.applySpecDocument(body)
	}

	c.wg.Add(1)
	go c.run()

	return c, nil
}

// CheckGate evaluates a feature gate for the user and records a gate exposure event.
// It blocks until the coordinator processes the request. After Close it returns false.
func (c *Coordinator) CheckGate(user evaluation.User, name string) bool {
	reply := make(chan bool, 1)
	select {
	case c.inputQueue <- checkGateReq{user: user, name: name, reply: reply}:
	case <-c.closer:
		return false
	}
	select {
	case value := <-reply:
		return value
	case <-c.closer:
		return false
	}
}

// GetConfig evaluates a dynamic config for the user and records a config exposure
// event. After Close it returns an empty result.
func (c *Coordinator) GetConfig(user evaluation.User, name string) evaluation.ConfigResult {
	reply := make(chan evaluation.ConfigResult, 1)
	select {
	case c.inputQueue <- getConfigReq{user: user, name: name, reply: reply}:
	case <-c.closer:
		return evaluation.ConfigResult{}
	}
	select {
	case result := <-reply:
		return result
	case <-c.closer:
		return evaluation.ConfigResult{}
	}
}

// LogEvent enqueues a custom event. There is no acknowledgment beyond the enqueue.
func (c *Coordinator) LogEvent(event events.Event) {
	select {
	case c.inputQueue <- logEventReq{event: event}:
	case <-c.closer:
	}
}

// Flush synchronously attempts delivery of all pending events and returns the number of
// events that remain unsent.
func (c *Coordinator) Flush() int {
	reply := make(chan int, 1)
	select {
	case c.inputQueue <- flushReq{reply: reply}:
	case <-c.closer:
		return 0
	}
	select {
	case remaining := <-reply:
		return remaining
	case <-c.closer:
		return 0
	}
}

// Status returns a snapshot of the coordinator's state.
func (c *Coordinator) Status() Status {
	reply := make(chan Status, 1)
	select {
	case c.inputQueue <- statusReq{reply: reply}:
	case <-c.closer:
		return Status{Offline: c.offline}
	}
	select {
	case st := <-reply:
		return st
	case <-c.closer:
		return Status{Offline: c.offline}
	}
}

// ApplySpecData feeds a raw spec document into the coordinator, as if it had been
// downloaded. This is how the offline file data source delivers updates. It satisfies
// filedata.UpdateHandler.
func (c *Coordinator) ApplySpecData(data []byte) {
	select {
	case c.inputQueue <- applySpecDataMsg{data: data}:
	case <-c.closer:
	}
}

// Close shuts the coordinator down. One best-effort flush is attempted; events that
// cannot be delivered by that final attempt are discarded.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		close(c.closer)
		c.wg.Wait()
	})
}

func (c *Coordinator) run() {
	defer c.wg.Done()

	// Each timer is one-shot and re-armed only after its handler returns, so a slow
	// handler pushes the next firing out by the full interval and the same timer can
	// never fire twice concurrently.
	var syncTimer *time.Timer
	var syncCh <-chan time.Time
	if !c.offline {
		syncTimer = time.NewTimer(c.pollInterval)
		syncCh = syncTimer.C
	}
	flushTimer := time.NewTimer(c.flushInterval)
	// The event-logging path keeps its own flush trigger, independent of the scheduled
	// one; both re-arm themselves after running.
	logFlushTimer := time.NewTimer(c.flushInterval)

	for {
		select {
		case m := <-c.inputQueue:
			c.handleMessage(m)
		case <-syncCh:
			c.handleSyncTick()
			syncTimer.Reset(c.pollInterval)
		case <-flushTimer.C:
			c.flush()
			flushTimer.Reset(c.flushInterval)
		case <-logFlushTimer.C:
			c.flush()
			logFlushTimer.Reset(c.flushInterval)
		case <-c.closer:
			if syncTimer != nil {
				syncTimer.Stop()
			}
			flushTimer.Stop()
			logFlushTimer.Stop()
			c.drainInputQueue()
			if remaining := c.flush(); remaining > 0 {
				c.loggers.Warnf("Discarding %d undelivered events at shutdown", remaining)
			}
			return
		}
	}
}

// drainInputQueue handles any messages that were already queued when shutdown began, so
// that their events are included in the final flush and their callers are not left
// waiting.
func (c *Coordinator) drainInputQueue() {
	for {
		select {
		case m := <-c.inputQueue:
			c.handleMessage(m)
		default:
			return
		}
	}
}

func (c *Coordinator) handleMessage(m interface{}) {
	switch m := m.(type) {
	case checkGateReq:
		result := c.evaluator.EvaluateGate(m.user, m.name, c.lookupDefinition(m.name))
		c.buffer.Append(events.NewGateExposure(m.user, m.name, result))
		m.reply <- result.Value
	case getConfigReq:
		result := c.evaluator.EvaluateConfig(m.user, m.name, c.lookupDefinition(m.name))
		c.buffer.Append(events.NewConfigExposure(m.user, m.name, result))
		m.reply <- result
	case logEventReq:
		c.buffer.Append(m.event)
	case flushReq:
		m.reply <- c.flush()
	case statusReq:
		m.reply <- Status{
			LastSyncTime:  c.lastSyncTime,
			PendingEvents: c.buffer.Len(),
			CachedSpecs:   c.specs.Len(),
			Offline:       c.offline,
		}
	case applySpecDataMsg:
		c.applySpecDocument(m.data)
	}
}

func (c *Coordinator) lookupDefinition(name string) json.RawMessage {
	if entry, ok := c.specs.Lookup(name); ok {
		return entry.Definition
	}
	return nil
}

func (c *Coordinator) handleSyncTick() {
	body, err := c.sender.Request(transport.EndpointDownloadConfigSpecs, syncRequest{SinceTime: c.lastSyncTime})
	if err != nil {
		// No backoff; the next tick retries at the same fixed interval.
		c.loggers.Warnf("Spec sync failed, will retry at next interval: %s", err)
		return
	}
	c.applySpecDocument(body)
}

// applySpecDocument parses and applies a spec document body. A malformed body is a
// no-op for the cache, but resets the sync timestamp to zero so that the next request
// asks for a full document instead of an incremental one.
func (c *Coordinator) applySpecDocument(data []byte) {
	doc, err := store.ParseSpecDocument(data)
	if err != nil {
		c.loggers.Warnf("Discarding malformed spec document, will request a full resync: %s", err)
		c.lastSyncTime = 0
		return
	}
	c.specs.ApplyDocument(doc)
	c.lastSyncTime = doc.Time
	c.loggers.Debugf("Applied spec document: %d gates, %d configs, time %d",
		len(doc.FeatureGates), len(doc.DynamicConfigs), doc.Time)
}

func (c *Coordinator) flush() int {
	if c.offline {
		if n := c.buffer.Len(); n > 0 {
			if !c.warnedOfflineDiscard {
				c.loggers.Warnf("Running offline; discarding %d buffered events", n)
				c.warnedOfflineDiscard = true
			}
			c.buffer.Flush(func([]events.Event) error { return nil })
		}
		return 0
	}
	return c.buffer.Flush(c.deliverBatch)
}

func (c *Coordinator) deliverBatch(batch []events.Event) error {
	_, err := c.sender.Request(transport.EndpointLogEvents, logEventsRequest{Events: batch})
	if err != nil {
		c.loggers.Warnf("Failed to deliver %d events, will retry on next flush: %s", len(batch), err)
	}
	return err
}
