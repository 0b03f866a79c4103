package config

import "time"

const (
	BackendNotion = "notion"
	BackendMongo  = "mongo"
)

const (
	DefaultPort = "8080"

	DefaultLogLevel = "info"

	DefaultRecordsBackend = BackendNotion

	DefaultNotionBaseURL = "https://api.notion.com"

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roombooking"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultCacheTTL = 10 * time.Second

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultKafkaTopic = "room-booking.events"
)
