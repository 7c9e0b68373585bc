// Package evaluation defines the interface between the GateSync client core and the
// rule-matching engine, along with the user and result types that cross that boundary.
//
// The client core does not implement rule matching itself; it looks up the stored
// definition for a gate or config and hands it to an Evaluator. The Basic evaluator
// provided here applies only the definition's default values, which is enough for
// offline use and for tests; a full rule engine plugs in through the same interface.
package evaluation

import (
	"encoding/json"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// User is the context that gates and configs are evaluated against.
type User struct {
	// Key uniquely identifies the user. It is required for evaluation.
	Key string `json:"userID"`
	// Email is an optional standard attribute.
	Email string `json:"email,omitempty"`
	// Country is an optional standard attribute.
	Country string `json:"country,omitempty"`
	// Custom holds any additional attributes referenced by rule conditions.
	Custom map[string]ldvalue.Value `json:"custom,omitempty"`
}

// SecondaryExposure records another spec that was consulted while evaluating the
// requested gate or config, for example through a pass-gate condition.
type SecondaryExposure struct {
	Gate      string `json:"gate"`
	GateValue string `json:"gateValue"`
	RuleID    string `json:"ruleID"`
}

// GateResult is the outcome of evaluating a feature gate.
type GateResult struct {
	Value              bool
	RuleID             string
	SecondaryExposures []SecondaryExposure
}

// ConfigResult is the outcome of evaluating a dynamic config.
type ConfigResult struct {
	Value              ldvalue.Value
	RuleID             string
	SecondaryExposures []SecondaryExposure
}

// Evaluator decides the value of a gate or config for a user, given the stored rule
// definition. A nil definition means the spec was not found in the local cache; the
// evaluator applies its own default policy in that case.
type Evaluator interface {
	EvaluateGate(user User, name string, definition json.RawMessage) GateResult
	EvaluateConfig(user User, name string, definition json.RawMessage) ConfigResult
}

const (
	defaultRuleID = "default"
	unknownRuleID = "unknown"
)

// basicEvaluator applies only a definition's top-level defaults and never matches rules.
type basicEvaluator struct{}

// Basic returns an Evaluator that resolves every gate to its definition's "enabled"
// field and every config to its "defaultValue" field, ignoring rule conditions. An
// unknown spec resolves to false or null.
func Basic() Evaluator {
	return basicEvaluator{}
}

type basicDefinition struct {
	Enabled      bool          `json:"enabled"`
	DefaultValue ldvalue.Value `json:"defaultValue"`
}

func (e basicEvaluator) EvaluateGate(user User, name string, definition json.RawMessage) GateResult {
	if definition == nil {
		return GateResult{Value: false, RuleID: unknownRuleID}
	}
	var def basicDefinition
	if err := json.Unmarshal(definition, &def); err != nil {
		return GateResult{Value: false, RuleID: unknownRuleID}
	}
	return GateResult{Value: def.Enabled, RuleID: defaultRuleID}
}

func (e basicEvaluator) EvaluateConfig(user User, name string, definition json.RawMessage) ConfigResult {
	if definition == nil {
		return ConfigResult{Value: ldvalue.Null(), RuleID: unknownRuleID}
	}
	var def basicDefinition
	if err := json.Unmarshal(definition, &def); err != nil {
		return ConfigResult{Value: ldvalue.Null(), RuleID: unknownRuleID}
	}
	return ConfigResult{Value: def.DefaultValue, RuleID: defaultRuleID}
}
