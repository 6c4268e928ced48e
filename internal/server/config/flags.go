package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// minutes is a flag.Value for durations. A bare integer is read as minutes,
// anything else must parse with time.ParseDuration.
type minutes struct{ d *time.Duration }

func (m minutes) String() string {
	if m.d == nil {
		return ""
	}
	return m.d.String()
}

func (m minutes) Set(s string) error {
	if n, err := strconv.Atoi(s); err == nil {
		*m.d = time.Duration(n) * time.Minute
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*m.d = d
	return nil
}

// serverFlags lists the short flags owned by parseFlags.
var serverFlags = []string{"a", "m", "l", "d", "s", "t", "r", "v", "u", "p", "b", "g", "e", "smtp", "w"}

// parseFlags overlays config with values from the command line:
//
//	-a     gRPC bind address (":50051")
//	-m     metrics bind address, empty disables the listener
//	-l     log level
//	-d     PostgreSQL DSN
//	-s     JWT HMAC secret
//	-t     access token lifetime
//	-r     refresh token lifetime
//	-v     verification code lifetime
//	-u/-p  S3 credentials
//	-b     S3 avatar bucket
//	-g     S3 region
//	-e     S3 base endpoint ("http://127.0.0.1:9000/")
//	-smtp  SMTP host
//	-w     mail worker count
//
// Lifetimes take minutes ("15") or a duration ("720h"). Invalid values panic.
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC bind address")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics bind address")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "access token signing secret")

	fs.Var(minutes{&config.AccessTokenValidityDuration}, "t", "access token lifetime")
	fs.Var(minutes{&config.RefreshTokenValidityDuration}, "r", "refresh token lifetime")
	fs.Var(minutes{&config.VerificationSessionTTL}, "v", "verification code lifetime")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 avatar bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.SMTPHost, "smtp", config.SMTPHost, "SMTP host")
	fs.IntVar(&config.MailWorkers, "w", config.MailWorkers, "mail worker count")

	if err := fs.Parse(flagx.Select(os.Args[1:], serverFlags...)); err != nil {
		panic(err)
	}
}
