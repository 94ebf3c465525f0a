package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"car-rental-service/internal/middleware"
	"car-rental-service/internal/service"
	"car-rental-service/internal/storage"
)

// Multipart parts beyond this many bytes are spooled to temporary files.
const maxMultipartMemory = 8 << 20

type Services struct {
	Auth     *service.AuthService
	Listings *service.ListingService
	Bookings *service.BookingService
	Uploads  *service.UploadService
}

type RouterConfig struct {
	CORSOrigins    []string
	UploadMaxFiles int
	// Photos serves stored files back; nil when the object store is public itself.
	Photos storage.ObjectReader
	// Ping checks the store for /healthz.
	Ping func(ctx context.Context) error
}

func NewRouter(svc Services, cfg RouterConfig, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory
	r.Use(middleware.RequestLogger(log), middleware.Recovery(log))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Ping != nil {
			if err := cfg.Ping(c.Request.Context()); err != nil {
				log.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.JWTAuthMiddleware(svc.Auth)
	api := r.Group("/api")
	NewAuthHandler(svc.Auth, log).RegisterRoutes(api)
	NewListingHandler(svc.Listings, log).RegisterRoutes(api, requireAuth)
	NewBookingHandler(svc.Bookings, log).RegisterRoutes(api)
	NewPhotoHandler(svc.Uploads, cfg.Photos, cfg.UploadMaxFiles, log).RegisterRoutes(api)

	return r
}
