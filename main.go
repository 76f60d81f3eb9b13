package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	cli "github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/shresthjindal28/gradient-library/api"
	apiv1 "github.com/shresthjindal28/gradient-library/api/v1"
	"github.com/shresthjindal28/gradient-library/cdn"
	"github.com/shresthjindal28/gradient-library/config"
	"github.com/shresthjindal28/gradient-library/db"
	"github.com/shresthjindal28/gradient-library/gallery"
	"github.com/shresthjindal28/gradient-library/identity"
	"github.com/shresthjindal28/gradient-library/metrics"
	"github.com/shresthjindal28/gradient-library/util"
)

var log = logging.Logger("gradora")

var appVersion string

// #nosec G104 - it's not common to treat SetLogLevel error return
func before(cctx *cli.Context) error {
	level := util.LogLevl

	_ = logging.SetLogLevel("gradora", level)
	_ = logging.SetLogLevel("util", level)
	_ = logging.SetLogLevel("db", level)
	_ = logging.SetLogLevel("cdn", level)
	_ = logging.SetLogLevel("identity", level)
	_ = logging.SetLogLevel("metrics", level)

	return nil
}

func main() {
	cfg := config.NewGradora(appVersion)

	app := cli.NewApp()
	app.Name = "gradora"
	app.Usage = "gradient gallery api server"
	app.Version = appVersion
	app.Flags = getAppFlags(cfg)
	app.Before = before

	app.Commands = []*cli.Command{
		{
			Name:  "configure",
			Usage: "Saves a configuration file to the location specified by the config parameter",
			Action: func(cctx *cli.Context) error {
				configFile := cctx.String("config")
				if err := cfg.Load(configFile); err != nil && err != config.ErrNotInitialized { // still want to report parsing errors
					return err
				}

				if err := overrideSetOptions(app.Flags, cctx, cfg); err != nil {
					return err
				}
				return cfg.Save(configFile)
			},
		},
		{
			Name:  "setup",
			Usage: "Creates an initial admin user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "password",
					Required: true,
				},
			},
			Action: func(cctx *cli.Context) error {
				if err := cfg.Load(cctx.String("config")); err != nil && err != config.ErrNotInitialized {
					return err
				}
				if err := overrideSetOptions(app.Flags, cctx, cfg); err != nil {
					return err
				}
				return setupAdminUser(cctx.Context, cfg, cctx.String("username"), cctx.String("password"))
			},
		},
	}

	app.Action = func(cctx *cli.Context) error {
		log.Infof("gradora version: %s", appVersion)

		if err := cfg.Load(cctx.String("config")); err != nil && err != config.ErrNotInitialized { // still want to report parsing errors
			return err
		}

		if err := overrideSetOptions(app.Flags, cctx, cfg); err != nil {
			return err
		}

		ctx := cctx.Context

		if cfg.Jaeger.EnableTracing {
			tp, err := metrics.NewJaegerTraceProvider("gradora-api",
				cfg.Jaeger.ProviderUrl, cfg.Jaeger.SamplerRatio)
			if err != nil {
				return err
			}
			otel.SetTracerProvider(tp)
		}

		var tracer trace.Tracer = otel.Tracer(fmt.Sprintf("gradora_%s", cfg.Hostname))

		dbm := db.NewManager(cfg.Database.ConnString)
		if _, err := dbm.Get(ctx); err != nil {
			return err
		}

		store, err := cdn.NewStore(ctx, cfg.CDN)
		if err != nil {
			return err
		}

		zlog, err := zap.NewProduction()
		if err != nil {
			return err
		}
		slog := zlog.Sugar()

		gm := gallery.NewManager(dbm, store, cfg.CDN.Folder, slog)
		idp := identity.NewClient(cfg.Auth)

		engine := api.NewEngine(cfg, tracer)
		engine.RegisterAPI(apiv1.NewAPIV1(cfg, dbm, gm, idp, slog, tracer))

		return engine.Start()
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("could not run gradora app: %+v", err)
	}
}

func setupAdminUser(ctx context.Context, cfg *config.Gradora, username, password string) error {
	gdb, err := db.NewManager(cfg.Database.ConnString).Get(ctx)
	if err != nil {
		return err
	}

	username = strings.ToLower(username)

	var exist *util.User
	if err := gdb.First(&exist, "username = ?", username).Error; err == nil {
		return fmt.Errorf("a user already exists with that username: %s", username)
	}

	passHash, err := util.GetPasswordHash(password)
	if err != nil {
		return err
	}

	if err := gdb.Create(&util.User{
		UUID:     uuid.New().String(),
		Username: username,
		PassHash: passHash,
		Perm:     util.PermLevelAdmin,
	}).Error; err != nil {
		return err
	}

	log.Infof("admin user %s created", username)
	return nil
}
