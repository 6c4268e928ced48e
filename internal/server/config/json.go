package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Duration fields
// use timex.Duration so both "15m" and integer nanoseconds are accepted.
// Pointer fields distinguish "absent" from an explicit zero value.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	MetricsAddr                  *string        `json:"metrics_addr"`
	LogLevel                     string         `json:"log_level"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	VerificationSessionTTL       timex.Duration `json:"verification_session_ttl"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	AvatarPublicBaseURL          string         `json:"avatar_public_base_url"`
	SMTPHost                     string         `json:"smtp_host"`
	SMTPPort                     int            `json:"smtp_port"`
	SMTPUser                     string         `json:"smtp_user"`
	SMTPPassword                 string         `json:"smtp_password"`
	SMTPSSL                      *bool          `json:"smtp_ssl"`
	EmailSender                  string         `json:"email_sender"`
	MailWorkers                  int            `json:"mail_workers"`
	MailQueueSize                int            `json:"mail_queue_size"`
	EmailEnabled                 *bool          `json:"email_enabled"`
	GoogleEnabled                *bool          `json:"google_enabled"`
	GithubEnabled                *bool          `json:"github_enabled"`
	OAuthCallerSecret            string         `json:"oauth_caller_secret"`
	MinPasswordEntropy           float64        `json:"min_password_entropy"`
	Argon2Time                   uint32         `json:"argon2_time"`
	Argon2MemoryKiB              uint32         `json:"argon2_memory_kib"`
	Argon2Threads                uint8          `json:"argon2_threads"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag into config. Values absent from the file keep whatever config
// already holds. Unreadable files and invalid JSON panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
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

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	if c.MetricsAddr != nil {
		config.MetricsAddr = *c.MetricsAddr
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.VerificationSessionTTL.Duration > 0 {
		config.VerificationSessionTTL = c.VerificationSessionTTL.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.AvatarPublicBaseURL, c.AvatarPublicBaseURL)
	setString(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort > 0 {
		config.SMTPPort = c.SMTPPort
	}
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	if c.SMTPSSL != nil {
		config.SMTPSSL = *c.SMTPSSL
	}
	setString(&config.EmailSender, c.EmailSender)
	if c.MailWorkers > 0 {
		config.MailWorkers = c.MailWorkers
	}
	if c.MailQueueSize > 0 {
		config.MailQueueSize = c.MailQueueSize
	}
	if c.EmailEnabled != nil {
		config.EmailEnabled = *c.EmailEnabled
	}
	if c.GoogleEnabled != nil {
		config.GoogleEnabled = *c.GoogleEnabled
	}
	if c.GithubEnabled != nil {
		config.GithubEnabled = *c.GithubEnabled
	}
	setString(&config.OAuthCallerSecret, c.OAuthCallerSecret)
	if c.MinPasswordEntropy > 0 {
		config.MinPasswordEntropy = c.MinPasswordEntropy
	}
	if c.Argon2Time > 0 {
		config.Argon2Time = c.Argon2Time
	}
	if c.Argon2MemoryKiB > 0 {
		config.Argon2MemoryKiB = c.Argon2MemoryKiB
	}
	if c.Argon2Threads > 0 {
		config.Argon2Threads = c.Argon2Threads
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
