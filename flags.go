package main

import (
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	cli "github.com/urfave/cli/v2"

	"github.com/shresthjindal28/gradient-library/config"
	"github.com/shresthjindal28/gradient-library/util"
)

func getAppFlags(cfg *config.Gradora) []cli.Flag {
	hDir, err := homedir.Dir()
	if err != nil {
		log.Fatalf("could not determine homedir for gradora app: %+v", err)
	}

	return []cli.Flag{
		util.FlagLogLevl,
		&cli.StringFlag{
			Name:  "config",
			Usage: "specify configuration file location",
			Value: filepath.Join(hDir, ".gradora"),
		},
		&cli.StringFlag{
			Name:    "database",
			Usage:   "specify connection string for the gradora database",
			Value:   cfg.Database.ConnString,
			EnvVars: []string{"GRADORA_DATABASE"},
		},
		&cli.StringFlag{
			Name:    "apilisten",
			Usage:   "address for the api server to listen on",
			Value:   cfg.ApiListen,
			EnvVars: []string{"GRADORA_API_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "datadir",
			Usage:   "directory to store data in",
			Value:   cfg.DataDir,
			EnvVars: []string{"GRADORA_DATADIR"},
		},
		&cli.StringFlag{
			Name:    "hostname",
			Usage:   "public hostname this instance is reachable at",
			Value:   cfg.Hostname,
			EnvVars: []string{"GRADORA_HOSTNAME"},
		},
		&cli.BoolFlag{
			Name:    "logging",
			Usage:   "enable per endpoint logging",
			Value:   cfg.Logging.ApiEndpointLogging,
			EnvVars: []string{"GRADORA_API_LOGGING"},
		},
		&cli.Float64Flag{
			Name:    "rate-limit",
			Usage:   "requests per second allowed per client",
			Value:   cfg.RateLimit,
			EnvVars: []string{"GRADORA_RATE_LIMIT"},
		},
		&cli.Int64Flag{
			Name:    "upload-size-limit",
			Usage:   "maximum accepted upload size in bytes",
			Value:   cfg.UploadSizeLimit,
			EnvVars: []string{"GRADORA_UPLOAD_SIZE_LIMIT"},
		},
		&cli.StringFlag{
			Name:    "cdn-endpoint",
			Usage:   "s3 compatible endpoint holding gradient binaries",
			Value:   cfg.CDN.Endpoint,
			EnvVars: []string{"GRADORA_CDN_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "cdn-bucket",
			Usage:   "bucket holding gradient binaries",
			Value:   cfg.CDN.Bucket,
			EnvVars: []string{"GRADORA_CDN_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "cdn-public-base-url",
			Usage:   "public origin clients fetch gradient binaries from",
			Value:   cfg.CDN.PublicBaseURL,
			EnvVars: []string{"GRADORA_CDN_PUBLIC_BASE_URL"},
		},
		&cli.StringFlag{
			Name:    "session-secret",
			Usage:   "shared secret for verifying identity provider session tokens",
			Value:   cfg.Auth.SessionSecret,
			EnvVars: []string{"GRADORA_SESSION_SECRET"},
		},
		&cli.BoolFlag{
			Name:    "enable-tracing",
			Usage:   "export traces to the configured jaeger collector",
			Value:   cfg.Jaeger.EnableTracing,
			EnvVars: []string{"GRADORA_ENABLE_TRACING"},
		},
	}
}

// overrideSetOptions applies every flag the operator actually set on top of
// the loaded config.
func overrideSetOptions(flags []cli.Flag, cctx *cli.Context, cfg *config.Gradora) error {
	for _, flag := range flags {
		name := flag.Names()[0]
		if !cctx.IsSet(name) {
			continue
		}

		switch name {
		case "database":
			cfg.Database.ConnString = cctx.String("database")
		case "apilisten":
			cfg.ApiListen = cctx.String("apilisten")
		case "datadir":
			cfg.DataDir = cctx.String("datadir")
		case "hostname":
			cfg.Hostname = cctx.String("hostname")
		case "logging":
			cfg.Logging.ApiEndpointLogging = cctx.Bool("logging")
		case "rate-limit":
			cfg.RateLimit = cctx.Float64("rate-limit")
		case "upload-size-limit":
			cfg.UploadSizeLimit = cctx.Int64("upload-size-limit")
		case "cdn-endpoint":
			cfg.CDN.Endpoint = cctx.String("cdn-endpoint")
		case "cdn-bucket":
			cfg.CDN.Bucket = cctx.String("cdn-bucket")
		case "cdn-public-base-url":
			cfg.CDN.PublicBaseURL = cctx.String("cdn-public-base-url")
		case "session-secret":
			cfg.Auth.SessionSecret = cctx.String("session-secret")
		case "enable-tracing":
			cfg.Jaeger.EnableTracing = cctx.Bool("enable-tracing")
		}
	}
	return nil
}
