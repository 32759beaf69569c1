package server

import (
	"errors"
	"fmt"
	"log/slog"

	"backend-tripline/internal/catalog"
	"backend-tripline/internal/config"
	"backend-tripline/internal/extras"
	"backend-tripline/internal/itinerary"
	"backend-tripline/internal/legstore"
	"backend-tripline/internal/pathedit"
	"backend-tripline/internal/stream"
	"backend-tripline/internal/waypoint"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var errMongoStoreWithoutClient = errors.New("LEG_STORE=mongo needs a mongo connection")

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Mongo  *mongo.Client
	Stream *stream.Hub
	Legs   pathedit.Store
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, mongoClient *mongo.Client) (*Server, error) {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	itineraries := itinerary.NewService(db)
	legs, err := newLegStore(cfg, db, mongoClient, itineraries)
	if err != nil {
		return nil, err
	}

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Mongo:  mongoClient,
		Stream: stream.NewHub(redisClient),
		Legs:   legs,
	}

	registerRoutes(s, itineraries)
	return s, nil
}

func newLegStore(cfg config.Config, db *pgxpool.Pool, mongoClient *mongo.Client, status legstore.StatusReader) (pathedit.Store, error) {
	switch cfg.LegStore {
	case "", config.LegStorePostgres:
		return legstore.NewPostgres(db), nil
	case config.LegStoreMongo:
		if mongoClient == nil {
			return nil, errMongoStoreWithoutClient
		}
		return legstore.NewMongo(mongoClient, cfg.MongoDatabase, status), nil
	case config.LegStoreMemory:
		slog.Warn("legs are kept in memory and lost on restart")
		return legstore.NewMemory(status), nil
	default:
		return nil, fmt.Errorf("unknown LEG_STORE %q", cfg.LegStore)
	}
}

func registerRoutes(s *Server, itineraries *itinerary.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "leg_store": storeName(s.Cfg)})
	})

	guard := newWriteLimiter(s.Cfg.WriteRateLimit, s.Cfg.WriteRateBurst).Handler()

	edges := catalog.NewService(s.DB, catalog.NewCache(s.Redis, s.Cfg.CatalogCacheTTL))
	extrasSvc := extras.NewService(s.DB)
	editor := pathedit.NewEditor(s.Legs, edges, slog.Default())

	waypoint.RegisterRoutes(s.App.Group("/waypoints"), waypoint.NewService(s.DB), guard)
	catalog.RegisterRoutes(s.App.Group("/edges"), edges, guard)
	itinerary.RegisterRoutes(s.App.Group("/itineraries"), itineraries, s.Legs, guard)
	itinerary.RegisterParticipantRoutes(s.App.Group("/participants"), itineraries)
	extras.RegisterActivityRoutes(s.App.Group("/activities"), extrasSvc, guard)
	extras.RegisterLodgingRoutes(s.App.Group("/lodgings"), extrasSvc, guard)
	pathedit.RegisterRoutes(s.App, editor, s.Stream, guard)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

func storeName(cfg config.Config) string {
	if cfg.LegStore == "" {
		return config.LegStorePostgres
	}
	return cfg.LegStore
}
