package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"migratemate-be/internal/dto"
	"migratemate-be/internal/pkg/mailer"
	"migratemate-be/internal/repository/specification"
	"migratemate-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		uowFactory:   uowFactory,
		emailService: emailService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishCancellationEmailMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal email job: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing %s email for user %s", payload.Kind, payload.UserId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: payload.UserId})
	if err != nil {
		log.Printf("[ERROR] Failed to load user %s: %v", payload.UserId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if user == nil {
		log.Printf("[ERROR] User not found: %s", payload.UserId)
		msg.Ack() // User deleted? Ack.
		return
	}

	switch payload.Kind {
	case dto.EmailJobDownsellApplied:
		err = cs.emailService.SendDownsellApplied(user.Email, payload.OfferedPrice)
	case dto.EmailJobCancellationConfirmed:
		// A zero PeriodEnd means the producer could not resolve the
		// subscription; the mailer then omits the access-until line.
		periodEnd := ""
		if !payload.PeriodEnd.IsZero() {
			periodEnd = payload.PeriodEnd.Format(time.RFC1123)
		}
		err = cs.emailService.SendCancellationConfirmed(user.Email, periodEnd)
	default:
		log.Printf("[ERROR] Unknown email job kind: %s", payload.Kind)
		msg.Ack()
		return
	}

	if err != nil {
		log.Printf("[ERROR] Failed to send %s email to %s: %v", payload.Kind, user.Email, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Sent %s email to %s", payload.Kind, user.Email)
	msg.Ack()
}
