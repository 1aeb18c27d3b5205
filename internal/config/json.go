package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/bankcore/internal/flagx"
	"github.com/dmitrijs2005/bankcore/internal/timex"
)

// JsonConfig is the DTO used for reading JSON configuration files. Interval
// fields use timex.Duration so "1m" and integer nanoseconds both parse.
// After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	LockoutDuration              timex.Duration `json:"lockout_duration"`
	FailedAttemptThreshold       int            `json:"failed_attempt_threshold"`
	AuthEventLookback            int            `json:"auth_event_lookback"`
	InsecureSkipOwnershipChecks  bool           `json:"insecure_skip_ownership_checks"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flags into the provided Config. If no file path is given, nothing
// is loaded. An unreadable or malformed file panics: a half-applied config
// is worse than a refusal to start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.LockoutDuration = time.Duration(c.LockoutDuration.Duration)
	config.FailedAttemptThreshold = c.FailedAttemptThreshold
	config.AuthEventLookback = c.AuthEventLookback
	config.InsecureSkipOwnershipChecks = c.InsecureSkipOwnershipChecks
}
