// Package events contains the telemetry event model and the buffer that batches events
// for delivery to the control service.
package events

import (
	"strconv"

	"github.com/launchdarkly/go-sdk-common/v3/ldtime"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/gatesync/gatesync/evaluation"
)

// Event names used for exposure telemetry. Any other name is a custom event logged by
// the application.
const (
	GateExposureEventName   = "gate_exposure"
	ConfigExposureEventName = "config_exposure"
)

// Metadata keys used in exposure events.
const (
	metadataKeyGate      = "gate"
	metadataKeyGateValue = "gateValue"
	metadataKeyConfig    = "config"
	metadataKeyRuleID    = "ruleID"
)

// Event is a single telemetry event as sent to the event ingestion endpoint. Exposure
// events are Events with a fixed name and rule metadata; custom events carry whatever
// value and metadata the application logged.
type Event struct {
	EventName          string                         `json:"eventName"`
	User               evaluation.User                `json:"user"`
	Value              ldvalue.Value                  `json:"value"`
	Metadata           map[string]string              `json:"metadata,omitempty"`
	Time               ldtime.UnixMillisecondTime     `json:"time"`
	SecondaryExposures []evaluation.SecondaryExposure `json:"secondaryExposures,omitempty"`
}

// NewCustomEvent builds an application-defined event.
func NewCustomEvent(user evaluation.User, name string, value ldvalue.Value, metadata map[string]string) Event {
	return Event{
		EventName: name,
		User:      user,
		Value:     value,
		Metadata:  metadata,
		Time:      ldtime.UnixMillisNow(),
	}
}

// NewGateExposure builds the exposure event recorded for every gate evaluation.
func NewGateExposure(user evaluation.User, gateName string, result evaluation.GateResult) Event {
	return Event{
		EventName: GateExposureEventName,
		User:      user,
		Metadata: map[string]string{
			metadataKeyGate:      gateName,
			metadataKeyGateValue: strconv.FormatBool(result.Value),
			metadataKeyRuleID:    result.RuleID,
		},
		Time:               ldtime.UnixMillisNow(),
		SecondaryExposures: result.SecondaryExposures,
	}
}

// NewConfigExposure builds the exposure event recorded for every config evaluation.
func NewConfigExposure(user evaluation.User, configName string, result evaluation.ConfigResult) Event {
	return Event{
		EventName: ConfigExposureEventName,
		User:      user,
		Metadata: map[string]string{
			metadataKeyConfig: configName,
			metadataKeyRuleID: result.RuleID,
		},
		Time:               ldtime.UnixMillisNow(),
		SecondaryExposures: result.SecondaryExposures,
	}
}
