package api

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shresthjindal28/gradient-library/config"
	"github.com/shresthjindal28/gradient-library/db"
	"github.com/shresthjindal28/gradient-library/gallery"
	"github.com/shresthjindal28/gradient-library/identity"
	"github.com/shresthjindal28/gradient-library/util"
)

type apiV1 struct {
	cfg     *config.Gradora
	DB      *db.Manager
	tracer  trace.Tracer
	gallery *gallery.Manager
	idp     *identity.Client
	cacher  *lru.Cache
	log     *zap.SugaredLogger

	authenticators []Authenticator
}

func NewAPIV1(
	cfg *config.Gradora,
	dbm *db.Manager,
	gm *gallery.Manager,
	idp *identity.Client,
	log *zap.SugaredLogger,
	trc trace.Tracer,
) *apiV1 {
	cacher, _ := lru.New(2048)

	s := &apiV1{
		cfg:     cfg,
		DB:      dbm,
		tracer:  trc,
		gallery: gm,
		idp:     idp,
		cacher:  cacher,
		log:     log,
	}

	// ordered chain: identity provider sessions first, then legacy tokens
	s.authenticators = []Authenticator{
		&sessionAuthenticator{idp: idp},
		&legacyAuthenticator{db: dbm},
	}
	return s
}

func (s *apiV1) RegisterRoutes(e *echo.Echo) {
	e.Use(middleware.RateLimiterWithConfig(util.ConfigureRateLimiter(rate.Limit(s.cfg.RateLimit))))

	e.GET("/health", s.handleHealth)
	e.POST("/register", s.handleRegisterUser)
	e.POST("/login", s.handleLoginUser)
	e.GET("/viewer", withUser(s.handleGetViewer), s.AuthRequired(util.PermLevelUser))

	// listing is public; mutation requires a principal
	e.GET("/gradients", s.handleListGradients)
	e.POST("/gradients", withUser(s.handleCreateGradient), s.AuthRequired(util.PermLevelUser))
	e.DELETE("/gradients/:id", withUser(s.handleDeleteGradient), s.AuthRequired(util.PermLevelAdmin))

	e.POST("/upload", util.WithMultipartFormDataChecker(withUser(s.handleUpload)), s.AuthRequired(util.PermLevelUser))
	e.DELETE("/delete-gradient", withUser(s.handleDeleteAsset), s.AuthRequired(util.PermLevelAdmin))
	e.GET("/download", s.handleDownload, s.AuthRequired(util.PermLevelUser))

	admin := e.Group("/admin", s.AuthRequired(util.PermLevelAdmin))
	admin.GET("/users", withUser(s.handleAdminListUsers))
	admin.GET("/orphans", withUser(s.handleAdminListOrphans))
	admin.POST("/loglevel", s.handleLogLevel)
}
