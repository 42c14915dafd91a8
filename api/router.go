// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"bitwise74/drive-api/db"
	"bitwise74/drive-api/middleware"
	"bitwise74/drive-api/security"
	"bitwise74/drive-api/service"
	"bitwise74/drive-api/storage"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB     *gorm.DB
	Files  *service.Files
	Router *gin.Engine
}

func NewRouter() (*API, error) {
	a := &API{}

	conn, err := db.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = conn

	makeLogger()

	engine, err := security.NewEngine(viper.GetString("encryption.key"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize encryption engine, %w", err)
	}

	var backend storage.Backend

	if viper.GetString("storage.type") == "s3" {
		backend, err = storage.NewS3()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage, %w", err)
		}
	} else {
		backend, err = storage.NewLocal(viper.GetString("storage.root"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage, %w", err)
		}
	}

	a.Files = service.NewFiles(conn, engine, backend, service.NewThumbnailer(), viper.GetInt64("storage.quota_limit"))

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.RequestID(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	jwt := middleware.NewJWTMiddleware(conn)
	maxUploadSize := viper.GetInt64("upload.max_size")

	rateLimit := viper.GetInt("security.rate_limit")
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
		CleanupInterval:   time.Second,
	})

	main := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/users 		-> Registers a new owner and provisions their folders
		users.POST("", a.UserRegister)

		// GET /api/users/stats 	-> Returns the storage usage report of a user
		users.GET("/stats", jwt, cachePerUser(30), a.UserStats)
	}

	files := main.Group("/files", jwt)
	{
		// POST /api/files		-> Uploads a new file, encrypts and catalogs it
		files.POST("", middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

		// GET /api/files		-> Lists a user's files (?deleted=true for the trash view)
		files.GET("", a.FileList)

		// GET /api/files/:id		-> Serves a decrypted file
		files.GET("/:id", a.FileServe)

		// GET /api/files/:id/thumbnail	-> Serves a file's decrypted thumbnail
		files.GET("/:id/thumbnail", a.FileThumbnail)

		// PATCH /api/files/:id		-> Edits file flags (favorite)
		files.PATCH("/:id", a.FileEdit)

		// DELETE /api/files/:id	-> Moves a file to the trash
		files.DELETE("/:id", a.FileDelete)

		// POST /api/files/delete	-> Moves many files to the trash at once
		files.POST("/delete", a.FileDeleteBulk)

		// PUT /api/files/:id/restore	-> Restores a file from the trash
		files.PUT("/:id/restore", a.FileRestore)

		// POST /api/files/restore	-> Restores many files at once
		files.POST("/restore", a.FileRestoreBulk)

		// DELETE /api/files/:id/purge	-> Permanently deletes a trashed file
		files.DELETE("/:id/purge", a.FilePurge)

		// POST /api/files/purge	-> Permanently deletes many trashed files
		files.POST("/purge", a.FilePurgeBulk)
	}

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

// cachePerUser keys cached responses on the URI plus the requesting
// user, so one user's stats never get served to another
func cachePerUser(sec int) gin.HandlerFunc {
	return cache.Cache(store, time.Second*time.Duration(sec),
		cache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, cache.Strategy) {
			return true, cache.Strategy{
				CacheKey: c.Request.RequestURI + ":" + c.GetString("userID"),
			}
		}),
	)
}
