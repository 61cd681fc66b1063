package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envConfig mirrors Config with the environment variable names as
// mapstructure keys. Values not present in the environment fall back to the
// defaults seeded from the current Config.
type envConfig struct {
	ServerAddr          string        `mapstructure:"SERVER_ADDRESS"`
	DatabaseDSN         string        `mapstructure:"DATABASE_URL"`
	RunMigrations       bool          `mapstructure:"RUN_MIGRATIONS"`
	APIKey              string        `mapstructure:"API_KEY"`
	S3AccessKey         string        `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey         string        `mapstructure:"S3_SECRET_KEY"`
	S3Bucket            string        `mapstructure:"S3_BUCKET"`
	S3Region            string        `mapstructure:"S3_REGION"`
	S3BaseEndpoint      string        `mapstructure:"S3_ENDPOINT"`
	S3PublicBaseURL     string        `mapstructure:"S3_PUBLIC_BASE_URL"`
	MaxPhotoBytes       int64         `mapstructure:"MAX_PHOTO_BYTES"`
	ExternalCallTimeout time.Duration `mapstructure:"EXTERNAL_CALL_TIMEOUT"`
	RetryAttempts       int           `mapstructure:"RETRY_ATTEMPTS"`
	RetryBaseDelay      time.Duration `mapstructure:"RETRY_BASE_DELAY"`
	LockoutBackend      string        `mapstructure:"LOCKOUT_BACKEND"`
	RedisURL            string        `mapstructure:"REDIS_URL"`
	BoltPath            string        `mapstructure:"BOLT_PATH"`
	SMTPHost            string        `mapstructure:"SMTP_HOST"`
	SMTPPort            int           `mapstructure:"SMTP_PORT"`
	SMTPUsername        string        `mapstructure:"SMTP_USERNAME"`
	SMTPPassword        string        `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom            string        `mapstructure:"SMTP_FROM"`
	SMTPEncryption      string        `mapstructure:"SMTP_ENCRYPTION"`
	AlertRecipient      string        `mapstructure:"ALERT_RECIPIENT"`
	AMQPURL             string        `mapstructure:"RABBITMQ_URL"`
	AMQPExchange        string        `mapstructure:"RABBITMQ_EXCHANGE"`
	CORSAllowedOrigins  []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
}

// parseEnv overlays environment variables onto config. PORT, as set by most
// hosting platforms, wins over SERVER_ADDRESS.
func parseEnv(config *Config) error {
	v := viper.New()

	defaults := map[string]any{
		"SERVER_ADDRESS":        config.ServerAddr,
		"DATABASE_URL":          config.DatabaseDSN,
		"RUN_MIGRATIONS":        config.RunMigrations,
		"API_KEY":               config.APIKey,
		"S3_ACCESS_KEY":         config.S3AccessKey,
		"S3_SECRET_KEY":         config.S3SecretKey,
		"S3_BUCKET":             config.S3Bucket,
		"S3_REGION":             config.S3Region,
		"S3_ENDPOINT":           config.S3BaseEndpoint,
		"S3_PUBLIC_BASE_URL":    config.S3PublicBaseURL,
		"MAX_PHOTO_BYTES":       config.MaxPhotoBytes,
		"EXTERNAL_CALL_TIMEOUT": config.ExternalCallTimeout,
		"RETRY_ATTEMPTS":        config.RetryAttempts,
		"RETRY_BASE_DELAY":      config.RetryBaseDelay,
		"LOCKOUT_BACKEND":       config.LockoutBackend,
		"REDIS_URL":             config.RedisURL,
		"BOLT_PATH":             config.BoltPath,
		"SMTP_HOST":             config.SMTPHost,
		"SMTP_PORT":             config.SMTPPort,
		"SMTP_USERNAME":         config.SMTPUsername,
		"SMTP_PASSWORD":         config.SMTPPassword,
		"SMTP_FROM":             config.SMTPFrom,
		"SMTP_ENCRYPTION":       config.SMTPEncryption,
		"ALERT_RECIPIENT":       config.AlertRecipient,
		"RABBITMQ_URL":          config.AMQPURL,
		"RABBITMQ_EXCHANGE":     config.AMQPExchange,
		"CORS_ALLOWED_ORIGINS":  config.CORSAllowedOrigins,
		"LOG_LEVEL":             config.LogLevel,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()

	var ec envConfig
	if err := v.Unmarshal(&ec); err != nil {
		return err
	}

	config.ServerAddr = ec.ServerAddr
	config.DatabaseDSN = ec.DatabaseDSN
	config.RunMigrations = ec.RunMigrations
	config.APIKey = ec.APIKey
	config.S3AccessKey = ec.S3AccessKey
	config.S3SecretKey = ec.S3SecretKey
	config.S3Bucket = ec.S3Bucket
	config.S3Region = ec.S3Region
	config.S3BaseEndpoint = ec.S3BaseEndpoint
	config.S3PublicBaseURL = ec.S3PublicBaseURL
	config.MaxPhotoBytes = ec.MaxPhotoBytes
	config.ExternalCallTimeout = ec.ExternalCallTimeout
	config.RetryAttempts = ec.RetryAttempts
	config.RetryBaseDelay = ec.RetryBaseDelay
	config.LockoutBackend = strings.ToLower(strings.TrimSpace(ec.LockoutBackend))
	config.RedisURL = ec.RedisURL
	config.BoltPath = ec.BoltPath
	config.SMTPHost = ec.SMTPHost
	config.SMTPPort = ec.SMTPPort
	config.SMTPUsername = ec.SMTPUsername
	config.SMTPPassword = ec.SMTPPassword
	config.SMTPFrom = ec.SMTPFrom
	config.SMTPEncryption = ec.SMTPEncryption
	config.AlertRecipient = ec.AlertRecipient
	config.AMQPURL = ec.AMQPURL
	config.AMQPExchange = ec.AMQPExchange
	config.CORSAllowedOrigins = trimAll(ec.CORSAllowedOrigins)
	config.LogLevel = ec.LogLevel

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerAddr = ":" + port
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
