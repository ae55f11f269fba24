package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is a struct that holds configuration parameters for the package.
type Config struct {
	// WorkDir is a directory for temporary files and key-value stores.
	WorkDir string

	// MatchKVDir is a directory for the key-value cache of name-matching
	// responses.
	MatchKVDir string

	// JobsNum is a number of concurrent goroutines used for validation and
	// file ingestion.
	JobsNum int

	// LLMModel is the identifier of the language model used to drive agents.
	LLMModel string

	// LLMAPIKey is the API key for the language-model service.
	LLMAPIKey string

	// LLMMaxTokens caps the length of a single assistant turn.
	LLMMaxTokens int

	// LLMRetries is the number of attempts for transient language-model
	// failures.
	LLMRetries int

	// LLMRetryDelay is a fixed pause between language-model retries.
	LLMRetryDelay time.Duration

	// PgHost is a host name for PostgreSQL.
	PgHost string

	// PgUser is a user name for PostgreSQL.
	PgUser string

	// PgPass is a password for PostgreSQL.
	PgPass string

	// PgDB is a database name for PostgreSQL.
	PgDB string

	// GbifAPIURL is the root of the GBIF registry API.
	GbifAPIURL string

	// GbifUser is a GBIF account with registration rights.
	GbifUser string

	// GbifPass is the password of the GBIF account.
	GbifPass string

	// GbifOrgKey is the publishing-organization key new datasets are
	// registered under.
	GbifOrgKey string

	// GbifInstallationKey is the installation key new datasets are
	// registered under.
	GbifInstallationKey string

	// MatcherAPIURL is the root of the species name-matching API.
	MatcherAPIURL string

	// MinioURI is the host of the object storage that serves archives.
	MinioURI string

	// MinioAccessKey is the object-storage access key.
	MinioAccessKey string

	// MinioSecretKey is the object-storage secret key.
	MinioSecretKey string

	// MinioBucket is the bucket archives are uploaded to.
	MinioBucket string

	// MinioFolder is a path prefix inside the bucket.
	MinioFolder string

	// WebhookURL is an operator-notification webhook. Empty disables
	// notifications.
	WebhookURL string
}

// Option type allows to change settings for Config.
type Option func(*Config)

// OptWorkDir sets a directory for temporary files and key-value stores.
func OptWorkDir(d string) Option {
	return func(cfg *Config) {
		cfg.WorkDir = d
		cfg.MatchKVDir = filepath.Join(d, "match")
	}
}

// OptJobsNum sets parallelism number for concurrent goroutines.
func OptJobsNum(j int) Option {
	return func(cfg *Config) {
		cfg.JobsNum = j
	}
}

// OptLLMModel sets the language model.
func OptLLMModel(m string) Option {
	return func(cfg *Config) {
		cfg.LLMModel = m
	}
}

// OptLLMAPIKey sets the language-model API key.
func OptLLMAPIKey(k string) Option {
	return func(cfg *Config) {
		cfg.LLMAPIKey = k
	}
}

// OptPgHost sets host name for PostgreSQL.
func OptPgHost(h string) Option {
	return func(cfg *Config) {
		cfg.PgHost = h
	}
}

// OptPgUser sets user for PostgreSQL.
func OptPgUser(u string) Option {
	return func(cfg *Config) {
		cfg.PgUser = u
	}
}

// OptPgPass sets password for PostgreSQL.
func OptPgPass(p string) Option {
	return func(cfg *Config) {
		cfg.PgPass = p
	}
}

// OptPgDB sets database name for PostgreSQL.
func OptPgDB(d string) Option {
	return func(cfg *Config) {
		cfg.PgDB = d
	}
}

// OptGbifAPIURL sets the GBIF registry root URL.
func OptGbifAPIURL(u string) Option {
	return func(cfg *Config) {
		cfg.GbifAPIURL = u
	}
}

// OptGbifUser sets the GBIF account name.
func OptGbifUser(u string) Option {
	return func(cfg *Config) {
		cfg.GbifUser = u
	}
}

// OptGbifPass sets the GBIF account password.
func OptGbifPass(p string) Option {
	return func(cfg *Config) {
		cfg.GbifPass = p
	}
}

// OptGbifOrgKey sets the publishing-organization key.
func OptGbifOrgKey(k string) Option {
	return func(cfg *Config) {
		cfg.GbifOrgKey = k
	}
}

// OptGbifInstallationKey sets the installation key.
func OptGbifInstallationKey(k string) Option {
	return func(cfg *Config) {
		cfg.GbifInstallationKey = k
	}
}

// OptMatcherAPIURL sets the name-matching API root URL.
func OptMatcherAPIURL(u string) Option {
	return func(cfg *Config) {
		cfg.MatcherAPIURL = u
	}
}

// OptMinioURI sets the object-storage host.
func OptMinioURI(u string) Option {
	return func(cfg *Config) {
		cfg.MinioURI = u
	}
}

// OptMinioAccessKey sets the object-storage access key.
func OptMinioAccessKey(k string) Option {
	return func(cfg *Config) {
		cfg.MinioAccessKey = k
	}
}

// OptMinioSecretKey sets the object-storage secret key.
func OptMinioSecretKey(k string) Option {
	return func(cfg *Config) {
		cfg.MinioSecretKey = k
	}
}

// OptMinioBucket sets the object-storage bucket.
func OptMinioBucket(b string) Option {
	return func(cfg *Config) {
		cfg.MinioBucket = b
	}
}

// OptMinioFolder sets the path prefix inside the bucket.
func OptMinioFolder(f string) Option {
	return func(cfg *Config) {
		cfg.MinioFolder = f
	}
}

// OptWebhookURL sets the operator-notification webhook.
func OptWebhookURL(u string) Option {
	return func(cfg *Config) {
		cfg.WebhookURL = u
	}
}

func New(opts ...Option) Config {
	workDir, err := os.UserCacheDir()
	if err != nil {
		workDir = os.TempDir()
	}
	workDir = filepath.Join(workDir, "dwcagent")

	res := Config{
		WorkDir:       workDir,
		MatchKVDir:    filepath.Join(workDir, "match"),
		JobsNum:       4,
		LLMModel:      "claude-sonnet-4-5-20250901",
		LLMMaxTokens:  4096,
		LLMRetries:    10,
		LLMRetryDelay: 2 * time.Second,
		PgHost:        "0.0.0.0",
		PgUser:        "postgres",
		PgPass:        "postgres",
		PgDB:          "dwcagent",
		GbifAPIURL:    "https://api.gbif-uat.org/v1",
		MatcherAPIURL: "https://api.gbif.org/v1",
	}

	for _, opt := range opts {
		opt(&res)
	}

	return res
}
