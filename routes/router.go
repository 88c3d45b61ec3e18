package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cipherdrop/cipherdrop/config"
	"github.com/cipherdrop/cipherdrop/controllers"
	"github.com/cipherdrop/cipherdrop/middleware"
	"github.com/cipherdrop/cipherdrop/utils"
)

// formOverheadBytes is the slack the upload body limit grants for multipart
// framing around the file itself.
const formOverheadBytes = 1 << 20

// SetupRouter wires routes, middlewares, and the share controller.
func SetupRouter(cfg config.AppConfig, share *controllers.ShareController) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	al, err := utils.NewRollingFileLogger(cfg.AccessLogPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(al, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(al, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/", func(c *gin.Context) {
		c.File("./static/index.html")
	})

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	r.GET("/challenge/:token", share.ChallengeImage)

	r.POST("/upload",
		middleware.RateLimitMiddleware("upload", cfg.RateLimitPerMinute),
		limitBody(cfg.MaxUploadBytes()+formOverheadBytes),
		share.Upload,
	)

	r.GET("/download/:identifier", share.DownloadPage)
	r.POST("/download/:identifier",
		middleware.RateLimitMiddleware("download", cfg.RateLimitPerMinute),
		share.Download,
	)

	api := r.Group("/api/v1")
	// Minting persists a row, so it gets its own budget too.
	api.GET("/challenge",
		middleware.RateLimitMiddleware("challenge", cfg.RateLimitPerMinute),
		share.MintChallenge,
	)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		// Everything else lands on the upload page.
		ctx.Status(http.StatusOK)
		ctx.File("./static/index.html")
	})

	return r
}

// limitBody caps the request body so oversized uploads fail while reading
// instead of buffering to disk first.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBytes)
		ctx.Next()
	}
}
