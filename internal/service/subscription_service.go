package service

import (
	"context"

	"migratemate-be/internal/dto"
	"migratemate-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type ISubscriptionService interface {
	GetStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewSubscriptionService(uowFactory unitofwork.RepositoryFactory) ISubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
	}
}

func (s *subscriptionService) GetStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil // Not found
	}

	return &dto.SubscriptionStatusResponse{
		Id:               sub.ID,
		Status:           string(sub.Status),
		MonthlyPrice:     sub.MonthlyPrice,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
	}, nil
}
