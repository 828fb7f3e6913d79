package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/shareit-backend/internal/api"
	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/events"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
	"github.com/nekogravitycat/shareit-backend/internal/metrics"
	"github.com/nekogravitycat/shareit-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *slog.Logger
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTIssuer    string
	JWTTTL       time.Duration
	BcryptCost   int

	// Optional. A nil Redis client disables the user cache, a nil Publisher drops events
	// and a nil Metrics disables /metrics.
	Redis        *redis.Client
	UserCacheTTL time.Duration
	Publisher    events.Publisher
	Metrics      *metrics.Metrics
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, auth.WithIssuer(cfg.JWTIssuer))

	// User Module
	userRepo := user.NewCachedRepository(user.NewPgxRepository(cfg.DBPool), cfg.Redis, cfg.UserCacheTTL)
	userService := user.NewService(userRepo, passwordHasher)

	// Booking Module
	itemRepo := item.NewPgxRepository(cfg.DBPool)
	itemDirectory := item.NewDirectory(itemRepo)
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, userService, itemDirectory)
	projector := booking.NewProjector(bookingRepo)

	// Item Request Module
	requestRepo := itemrequest.NewPgxRepository(cfg.DBPool)
	requestService := itemrequest.NewService(requestRepo, userService, itemDirectory)

	// Item Module
	itemService := item.NewService(itemRepo, userService, requestRepo, projector)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		Logger:             cfg.Logger,
		UserService:        userService,
		ItemService:        itemService,
		ItemRequestService: requestService,
		BookingService:     bookingService,
		JWTManager:         jwtManager,
		Publisher:          cfg.Publisher,
		Metrics:            cfg.Metrics,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}
}
