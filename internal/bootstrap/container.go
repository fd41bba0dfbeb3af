package bootstrap

import (
	"context"
	"log"

	"migratemate-be/internal/config"
	"migratemate-be/internal/controller"
	"migratemate-be/internal/pkg/lock"
	"migratemate-be/internal/pkg/logger"
	"migratemate-be/internal/pkg/mailer"
	"migratemate-be/internal/repository/memory"
	"migratemate-be/internal/repository/unitofwork"
	"migratemate-be/internal/service"

	pktNats "migratemate-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const emailJobTopic = "cancellation-emails"

type Container struct {
	// Controllers
	CancellationController controller.ICancellationController
	SubscriptionController controller.ISubscriptionController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	var userLocker lock.UserLocker = lock.NoopUserLocker{}
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (open-workflow lock disabled)", err)
	} else {
		userLocker = lock.NewRedisUserLocker(rdb)
	}

	// In-memory workflow sessions
	sessionRepo := memory.NewWorkflowSessionRepository()

	// 3. Services
	publisherService := service.NewPublisherService(emailJobTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		emailJobTopic,
		uowFactory,
		emailService,
	)

	cancellationService := service.NewCancellationService(
		uowFactory,
		sessionRepo,
		userLocker,
		publisherService,
		natsPub,
		sysLogger,
		cfg.Downsell.DiscountCents,
	)
	subscriptionService := service.NewSubscriptionService(uowFactory)

	// 4. Controllers
	return &Container{
		CancellationController: controller.NewCancellationController(cancellationService),
		SubscriptionController: controller.NewSubscriptionController(subscriptionService),

		ConsumerService: consumerService,
	}
}
