package config

import (
	"errors"

	ct "github.com/launchdarkly/go-configtypes"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

var (
	errNoSDKKey = errors.New("an SDK key is required unless an offline file is configured")
)

// ValidateConfig ensures that the configuration does not contain contradictory properties.
//
// LoadConfigFromEnvironment and LoadConfigFile both call this method as a last step, but it
// is also called again by the client constructor because it is possible for application code
// that uses GateSync as a library to construct a Config programmatically.
func ValidateConfig(c *Config, loggers ldlog.Loggers) error {
	var result ct.ValidationResult

	if c.Main.SDKKey == "" && c.Main.OfflineFile == "" {
		result.AddError(nil, errNoSDKKey)
	}
	if c.Main.SDKKey != "" && c.Main.OfflineFile != "" {
		loggers.Warn("Both an SDK key and an offline file are configured; the offline file takes precedence and no network calls will be made")
	}

	return result.GetError()
}
