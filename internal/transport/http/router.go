package httptransport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"speech-relay-go/internal/platform/config"
	"speech-relay-go/internal/platform/logging"
)

// RequestIDHeader carries the per-request identifier on responses.
const RequestIDHeader = "X-Request-Id"

// Options configures the HTTP router builder.
type Options struct {
	Config *config.Config
	Logger *logging.Logger
}

// Router bundles together the gin engine and the API route group.
type Router struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
}

// Build constructs a gin engine pre-configured with recovery, logging,
// request-id and CORS middlewares, plus static serving of the web client.
func Build(opts Options) (*Router, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("http router requires config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.DefaultLogger
	}

	if opts.Config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestIDMiddleware())
	engine.Use(loggingMiddleware(logger))

	engine.SetTrustedProxies([]string{"0.0.0.0"})

	engine.Use(cors.New(cors.Config{
		AllowOrigins:              []string{"*"},
		AllowMethods:              []string{"POST", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: 200,
	}))

	if opts.Config.Web.Enabled {
		staticRoot := opts.Config.Web.StaticDir
		if staticRoot == "" {
			staticRoot = "./web"
		}
		if endpoint := opts.Config.Web.Endpoint; endpoint != "" {
			engine.Use(indexRewriteMiddleware(staticRoot, endpoint))
		}
		engine.Use(static.Serve("/", static.LocalFile(staticRoot, true)))
	}

	api := engine.Group("/api")

	return &Router{
		Engine: engine,
		API:    api,
	}, nil
}

// indexRewriteMiddleware serves the client page with its synthesis endpoint
// meta tag pointed at the configured URL instead of same-origin /speak.
func indexRewriteMiddleware(staticRoot, endpoint string) gin.HandlerFunc {
	const defaultMeta = `<meta name="speech-relay-endpoint" content="/speak">`
	replacement := fmt.Sprintf(`<meta name="speech-relay-endpoint" content=%q>`, endpoint)

	return func(c *gin.Context) {
		if c.Request.Method != "GET" || (c.Request.URL.Path != "/" && c.Request.URL.Path != "/index.html") {
			c.Next()
			return
		}
		page, err := os.ReadFile(filepath.Join(staticRoot, "index.html"))
		if err != nil {
			c.Next()
			return
		}
		page = []byte(strings.Replace(string(page), defaultMeta, replacement, 1))
		c.Data(200, "text/html; charset=utf-8", page)
		c.Abort()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

func loggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		logger.InfoTag("HTTP", "%s %s -> %d (%s)",
			c.Request.Method,
			c.Request.URL.Path,
			status,
			duration,
		)
	}
}

// RequestID returns the request identifier set by the middleware.
func RequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
