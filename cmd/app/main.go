package main

import (
	"fmt"
	nethttp "net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"geoshop/cmd"
	"geoshop/internal/adapters/in/http"
	"geoshop/internal/adapters/out/postgres/clientrepo"
	"geoshop/internal/adapters/out/postgres/orderrepo"
	"geoshop/internal/adapters/out/postgres/productrepo"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck //flushing on exit

	config := getConfig(logger)

	gormDB, err := openDatabase(config)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	root, err := cmd.NewCompositionRoot(config, gormDB, logger)
	if err != nil {
		logger.Fatal("composition root failed", zap.Error(err))
	}

	jobManager := root.CreateJobManager(config)
	if err = jobManager.StartAll(); err != nil {
		logger.Fatal("background jobs failed to start", zap.Error(err))
	}
	defer jobManager.StopAll()

	startWebServer(root, config.HTTPPort)
}

func getConfig(logger *zap.Logger) cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		logger.Info("no .env file, using process environment")
	}

	return cmd.Config{
		HTTPPort:   envOr("HTTP_PORT", "8080"),
		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSslMode:  envOr("DB_SSLMODE", "disable"),

		KafkaBrokers:          strings.Split(envOr("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaOrderEventsTopic: envOr("KAFKA_ORDER_EVENTS_TOPIC", "order-events"),

		MediaRoot: envOr("MEDIA_ROOT", "./media"),

		MaxOrderArea:     envFloatOr("MAX_ORDER_AREA", 0, logger),
		VATRate:          envFloatOr("VAT_RATE", 0.081, logger),
		ArchiveRetention: envDurationOr("ARCHIVE_RETENTION", 90*24*time.Hour, logger),
		ArchiveCronSpec:  envOr("ARCHIVE_CRON_SPEC", "0 0 3 * * *"),
		RebuildCronSpec:  envOr("REBUILD_CRON_SPEC", "0 */10 * * * *"),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envFloatOr(key string, fallback float64, logger *zap.Logger) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Fatal("invalid numeric setting", zap.String("key", key), zap.Error(err))
	}
	return parsed
}

func envDurationOr(key string, fallback time.Duration, logger *zap.Logger) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logger.Fatal("invalid duration setting", zap.String("key", key), zap.Error(err))
	}
	return parsed
}

func openDatabase(config cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword,
		config.DBName, config.DBSslMode)

	gormDB, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&productrepo.ProductDTO{},
		&productrepo.OwnershipDTO{},
		&clientrepo.ClientGroupDTO{},
	)
	if err != nil {
		return nil, err
	}
	return gormDB, nil
}

func startWebServer(root *cmd.CompositionRoot, port string) {
	e := echo.New()
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.String(nethttp.StatusOK, "Healthy")
	})

	server := http.NewServer(
		root.CreateCreateOrderCommandHandler(),
		root.CreateUpdateOrderCommandHandler(),
		root.CreateConfirmOrderCommandHandler(),
		root.CreateDeleteOrderCommandHandler(),
		root.CreateDeleteOrderItemCommandHandler(),
		root.CreateFetchExtractOrdersCommandHandler(),
		root.CreateUploadExtractResultCommandHandler(),
		root.CreateValidateOrderItemCommandHandler(),
		root.CreateDownloadResultCommandHandler(),
		root.CreateGetClientOrdersQueryHandler(),
		root.CreateGetOrderQueryHandler(),
		root.CreateGetLastDraftQueryHandler(),
		root.CreateGetPublicOrderQueryHandler(),
		root.FileStore(),
	)
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
