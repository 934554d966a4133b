package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"tourhub/internal/infra/config"
	"tourhub/internal/infra/obs"
)

const maxPhotoBytes = 10 << 20

type Handlers struct {
	Auth     AuthHTTP
	Hotels   ListingHTTP
	Vehicles ListingHTTP
	Bookings ReservationHTTP
	Orders   ReservationHTTP
	Payments PaymentHTTP
	Reviews  ReviewHTTP
	Me       ScopedListHTTP
	Provider ScopedListHTTP

	AuthMiddleware gin.HandlerFunc
	// AuthLimiter guards the credential and verification routes.
	AuthLimiter gin.HandlerFunc
}

type ListingHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type ReservationHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	UpdateStatus(c *gin.Context)
	Delete(c *gin.Context)
}

type PaymentHTTP interface {
	CreateIntent(c *gin.Context)
	ConfirmPayment(c *gin.Context)
}

type ReviewHTTP interface {
	Submit(c *gin.Context)
	ByBooking(c *gin.Context)
	ByListing(c *gin.Context)
}

// ScopedListHTTP lists reservations belonging to the caller, either as the
// customer or as the provider.
type ScopedListHTTP interface {
	Bookings(c *gin.Context)
	Orders(c *gin.Context)
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.MaxMultipartMemory = maxPhotoBytes
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		limited := api.Group("/auth")
		if h.AuthLimiter != nil {
			limited.Use(h.AuthLimiter)
		}
		limited.POST("/register", h.Auth.Register)
		limited.POST("/login", h.Auth.Login)
		limited.POST("/verification/send", h.Auth.SendCode)
		limited.POST("/verification/verify", h.Auth.VerifyCode)
		api.GET("/auth/me", h.Auth.Me)
	}
	registerListing(api.Group("/hotels"), h.Hotels)
	registerListing(api.Group("/vehicles"), h.Vehicles)
	registerReservation(api.Group("/bookings"), h.Bookings)
	registerReservation(api.Group("/orders"), h.Orders)
	if h.Payments != nil {
		api.POST("/payments/create-intent", h.Payments.CreateIntent)
		api.POST("/payments/confirm-payment", h.Payments.ConfirmPayment)
	}
	if h.Reviews != nil {
		api.POST("/reviews", h.Reviews.Submit)
		api.GET("/reviews/booking/:bookingId", h.Reviews.ByBooking)
		api.GET("/reviews/listing/:listingId", h.Reviews.ByListing)
	}
	if h.Me != nil {
		api.GET("/me/bookings", h.Me.Bookings)
		api.GET("/me/orders", h.Me.Orders)
	}
	if h.Provider != nil {
		api.GET("/provider/bookings", h.Provider.Bookings)
		api.GET("/provider/orders", h.Provider.Orders)
	}
	return router
}

func registerListing(group *gin.RouterGroup, h ListingHTTP) {
	if h == nil {
		return
	}
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	group.POST("/:id/photos", h.UploadPhoto)
}

func registerReservation(group *gin.RouterGroup, h ReservationHTTP) {
	if h == nil {
		return
	}
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PATCH("/:id", h.UpdateStatus)
	group.DELETE("/:id", h.Delete)
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
