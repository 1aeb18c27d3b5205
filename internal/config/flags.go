package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/bankcore/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-k int      lockout duration, seconds
//	-n int      failed-attempt threshold
//	-w int      auth-event lookback window size
//
// The function first filters os.Args down to the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with flags owned by other packages.
// Duration flags are accepted as integers and converted to time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-s", "-t", "-r", "-k", "-n", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (minutes)")
	lockoutDuration := fs.Int("k", int(config.LockoutDuration.Seconds()), "account lockout duration (seconds)")

	fs.IntVar(&config.FailedAttemptThreshold, "n", config.FailedAttemptThreshold, "failed authentications that trigger a lockout")
	fs.IntVar(&config.AuthEventLookback, "w", config.AuthEventLookback, "auth events scanned when detecting a failure streak")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.LockoutDuration = time.Duration(*lockoutDuration) * time.Second
}
