package main

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/StadtLandNetz/sln-notion-room-booking/internal/booking/cache"
	"github.com/StadtLandNetz/sln-notion-room-booking/internal/booking/handler"
	"github.com/StadtLandNetz/sln-notion-room-booking/internal/booking/service"
	"github.com/StadtLandNetz/sln-notion-room-booking/internal/booking/validator"
	"github.com/StadtLandNetz/sln-notion-room-booking/internal/records"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/app"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/config"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/kafka"
)

const ServiceName = "room-booking"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting room booking service")

	serverApp := app.NewApplication()

	store := initStore(cfg, serverApp)
	bookingService := initServices(cfg, serverApp, store)

	serverApp.SetApp(cfg,
		handler.NewBookingHandler(bookingService, cfg.Log),
		handler.NewHealthHandler(store, cfg.Log),
	)
	serverApp.Run()
}

func initStore(cfg *config.Config, serverApp *app.Application) records.Store {
	switch cfg.RecordsBackend {
	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
		defer cancel()

		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			cfg.Log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		serverApp.OnShutdown(func(ctx context.Context) {
			if err := mongoClient.Disconnect(ctx); err != nil {
				cfg.Log.Error("Failed to disconnect from MongoDB", "error", err)
			}
		})

		cfg.Log.Info("Records backend initialized", "backend", config.BackendMongo, "database", cfg.MongoDatabaseName)
		return records.NewMongoStore(mongoClient, cfg.MongoDatabaseName, cfg.Log)

	default:
		cfg.Log.Info("Records backend initialized", "backend", config.BackendNotion)
		return records.NewNotionStore(cfg.NotionBaseURL, cfg.NotionToken, cfg.NotionDatabaseID, cfg.Log)
	}
}

func initServices(cfg *config.Config, serverApp *app.Application, store records.Store) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	windowCache := cache.New(store, cfg.CacheTTL, cfg.Log)

	var events service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		serverApp.OnShutdown(func(ctx context.Context) {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		})
		events = producer
		cfg.Log.Info("Event publishing enabled", "topic", cfg.KafkaTopic)
	} else {
		cfg.Log.Info("Event publishing disabled, no Kafka brokers configured")
	}

	bookingService := service.NewBookingService(
		windowCache,
		store,
		bookingValidator,
		events,
		cfg.Log,
	)

	cfg.Log.Info("Booking service initialized", "cacheTTL", cfg.CacheTTL)
	return bookingService
}
