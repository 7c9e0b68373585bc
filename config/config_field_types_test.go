package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

func TestSDKKeyAuthorizationHeader(t *testing.T) {
	assert.Equal(t, "my-key", SDKKey("my-key").GetAuthorizationHeaderValue())
}

func TestSDKKeyMasked(t *testing.T) {
	assert.Equal(t, "serv*************-abc", SDKKey("serv-1234567890xy-abc").Masked())
	assert.Equal(t, "*****", SDKKey("short").Masked())
}

func TestOptLogLevel(t *testing.T) {
	assert.False(t, OptLogLevel{}.IsDefined())
	assert.Equal(t, ldlog.Warn, OptLogLevel{}.GetOrElse(ldlog.Warn))

	level, err := NewOptLogLevelFromString("debug")
	require.NoError(t, err)
	assert.True(t, level.IsDefined())
	assert.Equal(t, ldlog.Debug, level.GetOrElse(ldlog.Error))

	level, err = NewOptLogLevelFromString("")
	require.NoError(t, err)
	assert.False(t, level.IsDefined())

	_, err = NewOptLogLevelFromString("verbose")
	assert.Error(t, err)
}

func TestOptLogLevelUnmarshalText(t *testing.T) {
	var level OptLogLevel
	require.NoError(t, level.UnmarshalText([]byte("ERROR")))
	assert.Equal(t, ldlog.Error, level.GetOrElse(ldlog.Info))

	assert.Error(t, level.UnmarshalText([]byte("nope")))
	assert.Equal(t, ldlog.Error, level.GetOrElse(ldlog.Info)) // unchanged on error
}
