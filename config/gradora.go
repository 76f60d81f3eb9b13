package config

import (
	"os"
	"path/filepath"
	"time"
)

type Database struct {
	ConnString      string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxIdleTime time.Duration
}

// CDN holds the credentials for the external S3-compatible object store that
// serves gradient binaries. PublicBaseURL is the origin clients fetch from.
type CDN struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	Folder        string
}

type Auth struct {
	// secret shared with the identity provider for verifying session tokens
	SessionSecret string
	SessionIssuer string

	// identity provider management API, used for the admin user listing
	ProviderAPIURL string
	ProviderAPIKey string
}

type Logging struct {
	ApiEndpointLogging bool
}

type Jaeger struct {
	EnableTracing bool
	ProviderUrl   string
	SamplerRatio  float64
}

type Gradora struct {
	AppVersion      string
	DataDir         string
	ApiListen       string
	Hostname        string
	RateLimit       float64
	UploadSizeLimit int64

	Database Database
	CDN      CDN
	Auth     Auth
	Logging  Logging
	Jaeger   Jaeger
}

func (cfg *Gradora) Load(filename string) error {
	return load(cfg, filename)
}

// Save writes the config from `cfg` into `filename`.
func (cfg *Gradora) Save(filename string) error {
	return save(cfg, filename)
}

func NewGradora(appVersion string) *Gradora {
	pwd, _ := os.Getwd()

	return &Gradora{
		AppVersion:      appVersion,
		DataDir:         pwd,
		ApiListen:       ":3004",
		Hostname:        "http://localhost:3004",
		RateLimit:       20,
		UploadSizeLimit: 25 << 20,

		Database: Database{
			ConnString:      "sqlite=" + filepath.Join(pwd, "gradora.db"),
			MaxIdleConns:    80,
			MaxOpenConns:    99,
			ConnMaxIdleTime: time.Hour,
		},

		CDN: CDN{
			Region: "auto",
			Bucket: "gradora",
			Folder: "gradients",
		},

		Logging: Logging{
			ApiEndpointLogging: false,
		},

		Jaeger: Jaeger{
			EnableTracing: false,
			ProviderUrl:   "http://localhost:14268/api/traces",
			SamplerRatio:  1,
		},
	}
}
