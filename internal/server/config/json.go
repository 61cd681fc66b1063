package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/ventas/internal/flagx"
	"github.com/dmitrijs2005/ventas/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Durations
// use timex.Duration so both "5s" and integer nanoseconds are accepted.
type JsonConfig struct {
	ServerAddr          string         `json:"server_addr"`
	DatabaseDSN         string         `json:"database_dsn"`
	RunMigrations       bool           `json:"run_migrations"`
	APIKey              string         `json:"api_key"`
	S3AccessKey         string         `json:"s3_access_key"`
	S3SecretKey         string         `json:"s3_secret_key"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	S3PublicBaseURL     string         `json:"s3_public_base_url"`
	MaxPhotoBytes       int64          `json:"max_photo_bytes"`
	ExternalCallTimeout timex.Duration `json:"external_call_timeout"`
	RetryAttempts       int            `json:"retry_attempts"`
	RetryBaseDelay      timex.Duration `json:"retry_base_delay"`
	LockoutBackend      string         `json:"lockout_backend"`
	RedisURL            string         `json:"redis_url"`
	BoltPath            string         `json:"bolt_path"`
	SMTPHost            string         `json:"smtp_host"`
	SMTPPort            int            `json:"smtp_port"`
	SMTPUsername        string         `json:"smtp_username"`
	SMTPPassword        string         `json:"smtp_password"`
	SMTPFrom            string         `json:"smtp_from"`
	SMTPEncryption      string         `json:"smtp_encryption"`
	AlertRecipient      string         `json:"alert_recipient"`
	AMQPURL             string         `json:"amqp_url"`
	AMQPExchange        string         `json:"amqp_exchange"`
	CORSAllowedOrigins  []string       `json:"cors_allowed_origins"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config onto config.
// Keys absent from the file keep their current value: the DTO is seeded from
// config before the file is decoded on top of it.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}
	fromJson(config, c)
	return nil
}

func toJson(config *Config) *JsonConfig {
	return &JsonConfig{
		ServerAddr:          config.ServerAddr,
		DatabaseDSN:         config.DatabaseDSN,
		RunMigrations:       config.RunMigrations,
		APIKey:              config.APIKey,
		S3AccessKey:         config.S3AccessKey,
		S3SecretKey:         config.S3SecretKey,
		S3Bucket:            config.S3Bucket,
		S3Region:            config.S3Region,
		S3BaseEndpoint:      config.S3BaseEndpoint,
		S3PublicBaseURL:     config.S3PublicBaseURL,
		MaxPhotoBytes:       config.MaxPhotoBytes,
		ExternalCallTimeout: timex.Duration{Duration: config.ExternalCallTimeout},
		RetryAttempts:       config.RetryAttempts,
		RetryBaseDelay:      timex.Duration{Duration: config.RetryBaseDelay},
		LockoutBackend:      config.LockoutBackend,
		RedisURL:            config.RedisURL,
		BoltPath:            config.BoltPath,
		SMTPHost:            config.SMTPHost,
		SMTPPort:            config.SMTPPort,
		SMTPUsername:        config.SMTPUsername,
		SMTPPassword:        config.SMTPPassword,
		SMTPFrom:            config.SMTPFrom,
		SMTPEncryption:      config.SMTPEncryption,
		AlertRecipient:      config.AlertRecipient,
		AMQPURL:             config.AMQPURL,
		AMQPExchange:        config.AMQPExchange,
		CORSAllowedOrigins:  config.CORSAllowedOrigins,
		LogLevel:            config.LogLevel,
	}
}

func fromJson(config *Config, c *JsonConfig) {
	config.ServerAddr = c.ServerAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.RunMigrations = c.RunMigrations
	config.APIKey = c.APIKey
	config.S3AccessKey = c.S3AccessKey
	config.S3SecretKey = c.S3SecretKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3PublicBaseURL = c.S3PublicBaseURL
	config.MaxPhotoBytes = c.MaxPhotoBytes
	config.ExternalCallTimeout = c.ExternalCallTimeout.Duration
	config.RetryAttempts = c.RetryAttempts
	config.RetryBaseDelay = c.RetryBaseDelay.Duration
	config.LockoutBackend = c.LockoutBackend
	config.RedisURL = c.RedisURL
	config.BoltPath = c.BoltPath
	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUsername = c.SMTPUsername
	config.SMTPPassword = c.SMTPPassword
	config.SMTPFrom = c.SMTPFrom
	config.SMTPEncryption = c.SMTPEncryption
	config.AlertRecipient = c.AlertRecipient
	config.AMQPURL = c.AMQPURL
	config.AMQPExchange = c.AMQPExchange
	config.CORSAllowedOrigins = c.CORSAllowedOrigins
	config.LogLevel = c.LogLevel
}
