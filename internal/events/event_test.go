package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/gatesync/gatesync/evaluation"
)

func TestGateExposureEvent(t *testing.T) {
	user := evaluation.User{Key: "user-1"}
	result := evaluation.GateResult{
		Value:  true,
		RuleID: "rule-7",
		SecondaryExposures: []evaluation.SecondaryExposure{
			{Gate: "other", GateValue: "false", RuleID: "default"},
		},
	}

	e := NewGateExposure(user, "my-gate", result)

	assert.Equal(t, GateExposureEventName, e.EventName)
	assert.Equal(t, map[string]string{
		"gate":      "my-gate",
		"gateValue": "true",
		"ruleID":    "rule-7",
	}, e.Metadata)
	assert.Equal(t, result.SecondaryExposures, e.SecondaryExposures)
	assert.NotZero(t, e.Time)
}

func TestConfigExposureEvent(t *testing.T) {
	user := evaluation.User{Key: "user-1"}
	result := evaluation.ConfigResult{Value: ldvalue.String("x"), RuleID: "rule-3"}

	e := NewConfigExposure(user, "my-config", result)

	assert.Equal(t, ConfigExposureEventName, e.EventName)
	assert.Equal(t, map[string]string{
		"config": "my-config",
		"ruleID": "rule-3",
	}, e.Metadata)
}

func TestEventJSONShape(t *testing.T) {
	user := evaluation.User{Key: "user-1", Email: "u@example.com"}
	e := NewCustomEvent(user, "purchase", ldvalue.Int(3), map[string]string{"sku": "abc"})
	e.Time = 12345

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"eventName": "purchase",
		"user": {"userID": "user-1", "email": "u@example.com"},
		"value": 3,
		"metadata": {"sku": "abc"},
		"time": 12345
	}`, string(data))
}
