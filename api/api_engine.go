package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/shresthjindal28/gradient-library/config"
	"github.com/shresthjindal28/gradient-library/util"
)

type IRegister interface {
	RegisterRoutes(en *echo.Echo)
}

type ApiEngine struct {
	eng *echo.Echo
	cfg *config.Gradora
}

func NewEngine(cfg *config.Gradora, tcr trace.Tracer) *ApiEngine {
	e := echo.New()
	e.Binder = new(util.Binder)
	e.Pre(middleware.RemoveTrailingSlash())

	if cfg.Logging.ApiEndpointLogging {
		e.Use(middleware.Logger())
	}

	e.Use(util.TracingMiddleware(tcr))
	e.Use(util.AppVersionMiddleware(cfg.AppVersion))
	e.HTTPErrorHandler = util.ErrorHandler

	e.Use(middleware.Recover())

	phandle := promhttp.Handler()
	e.GET("/debug/metrics/prometheus", func(e echo.Context) error {
		phandle.ServeHTTP(e.Response().Writer, e.Request())
		return nil
	})

	e.Use(middleware.CORS())

	return &ApiEngine{eng: e, cfg: cfg}
}

func (apiEng *ApiEngine) Start() error {
	return apiEng.eng.Start(apiEng.cfg.ApiListen)
}

func (apiEng *ApiEngine) RegisterAPI(api IRegister) {
	api.RegisterRoutes(apiEng.eng)
}
