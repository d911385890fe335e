package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CharlesX20/chimestradingstore/controllers"
	"github.com/CharlesX20/chimestradingstore/database"
	"github.com/CharlesX20/chimestradingstore/kafka"
	applog "github.com/CharlesX20/chimestradingstore/logger"
	"github.com/CharlesX20/chimestradingstore/middleware"
	awspkg "github.com/CharlesX20/chimestradingstore/pkg/aws"
	"github.com/CharlesX20/chimestradingstore/pkg/cloudinary"
	"github.com/CharlesX20/chimestradingstore/repository"
	"github.com/CharlesX20/chimestradingstore/routes"
	"github.com/CharlesX20/chimestradingstore/sender"
	"github.com/CharlesX20/chimestradingstore/services"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	serviceName  = "storefront"
	maxBodyBytes = 25 << 20
	cartTTL      = 7 * 24 * time.Hour
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- 1. AWS + logging ---

	var awsCfg *sdkaws.Config
	if needsAWS(cfg) {
		loaded, err := awspkg.LoadAWSConfig(ctx, cfg.AWS)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load AWS config: %v\n", err)
			os.Exit(1)
		}
		awsCfg = &loaded
	}

	var cwWriter *awspkg.CloudWatchLogsClient
	if cfg.CloudWatchEnabled && awsCfg != nil {
		cwWriter, err = awspkg.NewCloudWatchLogsClient(ctx, *awsCfg, os.Getenv("CLOUDWATCH_LOG_GROUP"), serviceName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "CloudWatch logs disabled: %v\n", err)
		}
	}
	var logger *zap.Logger
	if cwWriter != nil {
		logger = applog.Initialize(cfg.Env, cwWriter)
	} else {
		logger = applog.Initialize(cfg.Env, nil)
	}
	defer logger.Sync()

	// --- 2. Storage ---

	mongoClient, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.DisconnectMongo(mongoClient); err != nil {
			logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	for name, ensure := range map[string]func(context.Context) error{
		"orders":   orderRepo.EnsureIndexes,
		"products": productRepo.EnsureIndexes,
		"users":    userRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			logger.Warn("failed to ensure indexes", zap.String("collection", name), zap.Error(err))
		}
	}
	cartRepo := repository.NewCartRepository(redisClient, cartTTL)
	tokenStore := repository.NewTokenStore(redisClient)

	// --- 3. Collaborators ---

	images, err := newImageStore(cfg, awsCfg)
	if err != nil {
		logger.Fatal("failed to configure image store", zap.Error(err))
	}

	var metrics services.MetricsRecorder
	var metricsClient *awspkg.MetricsClient
	if awsCfg != nil {
		metricsClient = awspkg.NewMetricsClient(*awsCfg, os.Getenv("CLOUDWATCH_NAMESPACE"), cfg.CloudWatchEnabled)
		metrics = metricsClient
	}

	events, closeEvents := newEventPublisher(cfg, awsCfg, logger)
	defer closeEvents()

	tokenService, err := services.NewTokenService(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("failed to create token service", zap.Error(err))
	}

	// --- 4. Services + controllers ---

	loc := cfg.Location()
	orderService := services.NewOrderService(orderRepo, images, events, metrics, services.OrderServiceConfig{
		LegacyConflictIndex: cfg.LegacyConflictIndex,
		PickupGrace:         cfg.PickupGrace,
		Location:            loc,
		ManagerPhone:        cfg.ManagerPhone,
	}, logger.Named("orders"))
	productService := services.NewProductService(productRepo, images, logger.Named("products"))
	cartService := services.NewCartService(cartRepo, productRepo, logger.Named("cart"))
	authService := services.NewAuthService(userRepo, tokenService, tokenStore, logger.Named("auth"))
	analyticsService := services.NewAnalyticsService(orderRepo, productRepo, userRepo, loc, logger.Named("analytics"))

	ctrl := routes.Controllers{
		Auth:      controllers.NewAuthController(authService, cfg.CookieSecure),
		Products:  controllers.NewProductController(productService, controllers.NewCacheManager(redisClient, logger.Named("cache"))),
		Cart:      controllers.NewCartController(cartService),
		Orders:    controllers.NewOrderController(orderService),
		Analytics: controllers.NewAnalyticsController(analyticsService),
	}

	authLimiter := middleware.NewRateLimiter(ctx, rate.Every(6*time.Second), 10, 10*time.Minute)
	checkoutLimiter := middleware.NewRateLimiter(ctx, rate.Every(12*time.Second), 5, 10*time.Minute)
	guards := routes.Guards{
		Protect:       middleware.ProtectRoute(tokenService, userRepo),
		Admin:         middleware.AdminRoute(),
		AuthLimit:     middleware.RateLimit(authLimiter),
		CheckoutLimit: middleware.RateLimit(checkoutLimiter),
	}

	// --- 5. HTTP server ---

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(applog.RequestID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Metrics(metricsClient, serviceName))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	routes.RegisterRoutes(r, ctrl, guards)
	routes.RegisterSPA(r, cfg.FrontendDist)

	// --- 6. Seller notifications ---

	if worker := newNotificationWorker(cfg, loc, metrics, logger); worker != nil && awsCfg != nil {
		consumer := awspkg.NewSQSConsumer(*awsCfg, cfg.OrderEventsQueueURL, logger.Named("sqs"))
		go func() {
			if err := consumer.StartPolling(ctx, worker.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("notification worker stopped", zap.Error(err))
			}
		}()
	}

	// --- 7. Graceful shutdown ---

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("storefront starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func needsAWS(cfg *Config) bool {
	return cfg.ImageStore == ImageStoreS3 ||
		cfg.EventsBackend == EventsSNS ||
		cfg.OrderEventsQueueURL != "" ||
		cfg.CloudWatchEnabled
}

func newImageStore(cfg *Config, awsCfg *sdkaws.Config) (services.ImageStore, error) {
	switch cfg.ImageStore {
	case ImageStoreS3:
		if awsCfg == nil {
			return nil, errors.New("AWS config unavailable")
		}
		client := awspkg.NewS3Client(*awsCfg, cfg.AWS.Endpoint)
		return awspkg.NewS3ImageStore(client, cfg.S3Bucket, cfg.S3Prefix, cfg.AWS.Endpoint, cfg.CloudFrontDomain), nil
	default:
		return cloudinary.NewImageStore(cfg.CloudinaryURL)
	}
}

// newEventPublisher returns nil when events are disabled; the order service
// then skips publishing.
func newEventPublisher(cfg *Config, awsCfg *sdkaws.Config, logger *zap.Logger) (services.EventPublisher, func()) {
	switch cfg.EventsBackend {
	case EventsSNS:
		if awsCfg == nil {
			return nil, func() {}
		}
		return awspkg.NewTopicPublisher(awspkg.NewSNSClient(*awsCfg), cfg.OrderSNSTopicArn), func() {}
	case EventsKafka:
		producer := kafka.NewProducer(kafka.ParseBrokers(cfg.KafkaBrokers), cfg.KafkaOrderTopic, logger.Named("kafka"))
		return producer, producer.Close
	default:
		return nil, func() {}
	}
}

func newNotificationWorker(cfg *Config, loc *time.Location, metrics services.MetricsRecorder, logger *zap.Logger) *services.NotificationWorker {
	if cfg.OrderEventsQueueURL == "" {
		return nil
	}
	if cfg.ManagerPhone == "" {
		logger.Warn("MANAGER_PHONE not set, seller notifications disabled")
		return nil
	}
	twilio, err := sender.NewTwilioSender(sender.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioWhatsAppFrom,
		BaseURL:    os.Getenv("TWILIO_BASE_URL"),
	})
	if err != nil {
		logger.Warn("seller notifications disabled", zap.Error(err))
		return nil
	}
	return services.NewNotificationWorker(twilio, cfg.ManagerPhone, loc, metrics, logger.Named("notifications"))
}
