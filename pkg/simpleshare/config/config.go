// Package config loads server configuration and builds the wired service
// graph from it. Backends are selected by URL scheme: METADATA_URL picks
// the metadata store (memory, redis, postgres) and STORAGE_URL picks the
// blob store (memory, file, s3).
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tendant/simple-share/pkg/simpleshare"
	"github.com/tendant/simple-share/pkg/simpleshare/admin"
	kvmemory "github.com/tendant/simple-share/pkg/simpleshare/kv/memory"
	kvpostgres "github.com/tendant/simple-share/pkg/simpleshare/kv/postgres"
	kvredis "github.com/tendant/simple-share/pkg/simpleshare/kv/redis"
	fsstorage "github.com/tendant/simple-share/pkg/simpleshare/storage/fs"
	memorystorage "github.com/tendant/simple-share/pkg/simpleshare/storage/memory"
	s3storage "github.com/tendant/simple-share/pkg/simpleshare/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top
// of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:        "8080",
		Environment: "development",
		MetadataURL: "memory://",
		StorageURL:  "memory://",
		MaxFileSize: simpleshare.DefaultMaxFileSize,
		MaxTextSize: simpleshare.DefaultMaxTextSize,
	}
}

// ServerConfig represents server configuration for the simple-share service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// AdminPassword is the shared secret for the admin surface. Empty
	// disables admin routes entirely.
	AdminPassword string

	// MetadataURL selects the metadata store:
	//   memory://                 in-memory (default)
	//   redis://host:port/db      Redis
	//   postgres://user@host/db   Postgres
	MetadataURL string

	// StorageURL selects the blob store:
	//   memory://                          in-memory (default)
	//   file:///path/to/data               filesystem
	//   s3://bucket?region=&endpoint=      S3-compatible
	StorageURL string

	// Size limits in bytes
	MaxFileSize int64
	MaxTextSize int64

	// S3 credentials, usually injected from the environment
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch scheme(c.MetadataURL) {
	case "memory", "redis", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported METADATA_URL scheme: %s (use memory://, redis://, or postgres://)", c.MetadataURL)
	}

	switch scheme(c.StorageURL) {
	case "memory", "file", "s3":
	default:
		return fmt.Errorf("unsupported STORAGE_URL scheme: %s (use memory://, file://, or s3://)", c.StorageURL)
	}

	if c.MaxFileSize <= 0 || c.MaxTextSize <= 0 {
		return errors.New("size limits must be positive")
	}

	return nil
}

// Build constructs the content and admin services from the configuration.
func (c *ServerConfig) Build(ctx context.Context) (simpleshare.Service, admin.Service, error) {
	meta, err := c.BuildMetadataStore(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build metadata store: %w", err)
	}

	blobs, err := c.BuildBlobStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	content, err := simpleshare.New(
		simpleshare.WithMetadataStore(meta),
		simpleshare.WithBlobStore(blobs),
		simpleshare.WithMaxFileSize(c.MaxFileSize),
		simpleshare.WithMaxTextSize(c.MaxTextSize),
	)
	if err != nil {
		return nil, nil, err
	}

	adminService, err := admin.New(
		admin.WithMetadataStore(meta),
		admin.WithContentService(content),
	)
	if err != nil {
		return nil, nil, err
	}

	return content, adminService, nil
}

// BuildMetadataStore creates a KVStore based on METADATA_URL
func (c *ServerConfig) BuildMetadataStore(ctx context.Context) (simpleshare.KVStore, error) {
	switch scheme(c.MetadataURL) {
	case "memory":
		return kvmemory.New(), nil

	case "redis":
		opts, err := goredis.ParseURL(c.MetadataURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse METADATA_URL: %w", err)
		}
		return kvredis.New(kvredis.Config{
			Address:  opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		})

	case "postgres", "postgresql":
		store, err := kvpostgres.New(ctx, c.MetadataURL)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported metadata store: %s", c.MetadataURL)
	}
}

// BuildBlobStore creates a BlobStore based on STORAGE_URL
func (c *ServerConfig) BuildBlobStore() (simpleshare.BlobStore, error) {
	switch scheme(c.StorageURL) {
	case "memory":
		return memorystorage.New(), nil

	case "file":
		path := strings.TrimPrefix(c.StorageURL, "file://")
		if path == "" {
			return nil, errors.New("filesystem path cannot be empty in STORAGE_URL")
		}
		return fsstorage.New(fsstorage.Config{BaseDir: path})

	case "s3":
		u, err := url.Parse(c.StorageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse STORAGE_URL: %w", err)
		}
		if u.Host == "" {
			return nil, errors.New("S3 bucket name cannot be empty in STORAGE_URL")
		}
		query := u.Query()
		createBucket, _ := strconv.ParseBool(query.Get("create_bucket"))
		return s3storage.New(s3storage.Config{
			Bucket:                 u.Host,
			Region:                 query.Get("region"),
			Endpoint:               query.Get("endpoint"),
			UsePathStyle:           query.Get("endpoint") != "",
			AccessKeyID:            c.AWSAccessKeyID,
			SecretAccessKey:        c.AWSSecretAccessKey,
			CreateBucketIfNotExist: createBucket,
		})

	default:
		return nil, fmt.Errorf("unsupported blob store: %s", c.StorageURL)
	}
}

func scheme(rawURL string) string {
	if idx := strings.Index(rawURL, "://"); idx > 0 {
		return rawURL[:idx]
	}
	return rawURL
}
