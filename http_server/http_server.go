package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/danthegoodman1/icescore/converter"
	"github.com/danthegoodman1/icescore/datastore"
	"github.com/danthegoodman1/icescore/gologger"
	"github.com/danthegoodman1/icescore/metastore"
	"github.com/danthegoodman1/icescore/scoring"
	"github.com/danthegoodman1/icescore/utils"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

var logger = gologger.NewLogger()

type HTTPServer struct {
	Echo *echo.Echo

	Catalog  *scoring.Catalog
	Registry *converter.Registry
	// DataStore and MetaStore may be nil, persisting results is then rejected.
	DataStore datastore.DataStore
	MetaStore metastore.MetaStore

	ScoreTimeout        time.Duration
	DefaultOutputColumn string
}

type CustomValidator struct {
	validator *validator.Validate
}

// NewHTTPServer sets up the routes without listening.
func NewHTTPServer(catalog *scoring.Catalog, reg *converter.Registry, ds datastore.DataStore, ms metastore.MetaStore) *HTTPServer {
	s := &HTTPServer{
		Echo:                echo.New(),
		Catalog:             catalog,
		Registry:            reg,
		DataStore:           ds,
		MetaStore:           ms,
		ScoreTimeout:        time.Second * time.Duration(utils.SCORE_TIMEOUT_SEC),
		DefaultOutputColumn: utils.DEFAULT_OUTPUT_COLUMN,
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.JSONSerializer = &utils.NoEscapeJSONSerializer{}

	s.Echo.Use(CreateReqContext)
	s.Echo.Use(LoggerMiddleware)
	s.Echo.Use(middleware.CORS())
	s.Echo.Validator = &CustomValidator{validator: validator.New()}

	// technical - no auth
	s.Echo.GET("/hc", s.HealthCheck)

	engines := s.Echo.Group("/engines")
	engines.GET("", ccHandler(s.ListEngines))
	engines.POST("/:name/applicable", ccHandler(s.EngineApplicable))
	engines.POST("/:name/score", ccHandler(s.ScoreHandler))

	s.Echo.POST("/documents/applicable", ccHandler(s.DocumentApplicable))

	s.Echo.GET("/namespaces/:ns/parts", ccHandler(s.ListParts))

	return s
}

func StartHTTPServer(catalog *scoring.Catalog, reg *converter.Registry, ds datastore.DataStore, ms metastore.MetaStore) *HTTPServer {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", utils.HTTP_PORT))
	if err != nil {
		logger.Error().Err(err).Msg("error creating tcp listener, exiting")
		os.Exit(1)
	}
	s := NewHTTPServer(catalog, reg, ds, ms)

	s.Echo.Listener = listener
	go func() {
		logger.Info().Msg("starting h2c server on " + listener.Addr().String())
		err := s.Echo.StartH2CServer("", &http2.Server{})
		// stop the broker
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to start h2c server, exiting")
			os.Exit(1)
		}
	}()

	return s
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ValidateRequest(c echo.Context, s interface{}) error {
	if err := c.Bind(s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(s); err != nil {
		return err
	}
	return nil
}

func (*HTTPServer) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	return err
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			// default handler
			c.Error(err)
		}
		stop := time.Since(start)
		// Log otherwise
		logger := zerolog.Ctx(c.Request().Context())
		req := c.Request()
		res := c.Response()

		p := req.URL.Path
		if p == "" {
			p = "/"
		}

		cl := req.Header.Get(echo.HeaderContentLength)
		if cl == "" {
			cl = "0"
		}
		logger.Debug().Str("method", req.Method).Str("remote_ip", c.RealIP()).Str("req_uri", req.RequestURI).Str("handler_path", c.Path()).Str("path", p).Int("status", res.Status).Int64("latency_ns", int64(stop)).Str("protocol", req.Proto).Str("bytes_in", cl).Int64("bytes_out", res.Size).Msg("req recived")
		return nil
	}
}
