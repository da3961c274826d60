package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig is the environment surface, parsed with cleanenv. Zero values
// mean "not set" and leave the existing configuration untouched.
type envConfig struct {
	Port          string `env:"PORT"`
	Environment   string `env:"ENVIRONMENT"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	MetadataURL   string `env:"METADATA_URL"`
	StorageURL    string `env:"STORAGE_URL"`
	MaxFileSize   int64  `env:"MAX_FILE_SIZE"`
	MaxTextSize   int64  `env:"MAX_TEXT_SIZE"`

	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

// WithEnv applies environment variable overrides.
//
// Environment variable mapping:
//
//	PORT           - Server port (default: "8080")
//	ENVIRONMENT    - Runtime environment (default: "development")
//	ADMIN_PASSWORD - Shared secret for /api/admin (empty disables admin)
//	METADATA_URL   - "memory://", "redis://host:port/db", or "postgres://..."
//	STORAGE_URL    - "memory://", "file:///path", or "s3://bucket?region=..."
//	MAX_FILE_SIZE  - Upload size limit in bytes
//	MAX_TEXT_SIZE  - Paste size limit in bytes
//
// S3 credentials come from the usual AWS_ACCESS_KEY_ID and
// AWS_SECRET_ACCESS_KEY variables.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}
		if env.AdminPassword != "" {
			c.AdminPassword = env.AdminPassword
		}
		if env.MetadataURL != "" {
			c.MetadataURL = env.MetadataURL
		}
		if env.StorageURL != "" {
			c.StorageURL = env.StorageURL
		}
		if env.MaxFileSize > 0 {
			c.MaxFileSize = env.MaxFileSize
		}
		if env.MaxTextSize > 0 {
			c.MaxTextSize = env.MaxTextSize
		}
		if env.AWSAccessKeyID != "" {
			c.AWSAccessKeyID = env.AWSAccessKeyID
		}
		if env.AWSSecretAccessKey != "" {
			c.AWSSecretAccessKey = env.AWSSecretAccessKey
		}

		return nil
	}
}
