package evaluation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

func TestBasicEvaluatorGate(t *testing.T) {
	e := Basic()
	user := User{Key: "u"}

	result := e.EvaluateGate(user, "g", json.RawMessage(`{"name": "g", "enabled": true}`))
	assert.True(t, result.Value)
	assert.Equal(t, "default", result.RuleID)

	result = e.EvaluateGate(user, "g", json.RawMessage(`{"name": "g", "enabled": false}`))
	assert.False(t, result.Value)
}

func TestBasicEvaluatorGateUnknownSpec(t *testing.T) {
	result := Basic().EvaluateGate(User{Key: "u"}, "missing", nil)
	assert.False(t, result.Value)
	assert.Equal(t, "unknown", result.RuleID)
}

func TestBasicEvaluatorConfig(t *testing.T) {
	e := Basic()
	user := User{Key: "u"}

	result := e.EvaluateConfig(user, "c", json.RawMessage(`{"name": "c", "defaultValue": {"x": 1}}`))
	assert.Equal(t, "default", result.RuleID)
	assert.Equal(t, 1, result.Value.GetByKey("x").IntValue())

	result = e.EvaluateConfig(user, "c", nil)
	assert.True(t, result.Value.IsNull())
	assert.Equal(t, "unknown", result.RuleID)
}

func TestBasicEvaluatorMalformedDefinition(t *testing.T) {
	result := Basic().EvaluateGate(User{Key: "u"}, "g", json.RawMessage(`nope`))
	assert.False(t, result.Value)
	assert.Equal(t, "unknown", result.RuleID)
}

func TestUserJSONShape(t *testing.T) {
	data, err := json.Marshal(User{
		Key:    "u1",
		Custom: map[string]ldvalue.Value{"plan": ldvalue.String("pro")},
	})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"userID": "u1", "custom": {"plan": "pro"}}`, string(data))
}
