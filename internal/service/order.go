package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"furnit-storefront/internal/model"
	"furnit-storefront/internal/repository"
)

type OrderService interface {
	// PlaceOrder assigns the id and persists the order, plus its confirmation intent in outbox mode.
	PlaceOrder(ctx context.Context, order *model.Order) (*model.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*model.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error)
}

type orderServiceImpl struct {
	db         *gorm.DB
	orderRepo  repository.OrderRepository
	outboxRepo repository.OutboxRepository
	useOutbox  bool
	now        func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	outboxRepo repository.OutboxRepository,
	useOutbox bool,
) OrderService {
	return &orderServiceImpl{
		db:         db,
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		useOutbox:  useOutbox,
		now:        time.Now,
	}
}

func (s *orderServiceImpl) PlaceOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("order has no items")
	}

	order.ID = uuid.NewString()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = s.now()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order in db: %w", err)
		}

		if !s.useOutbox {
			return nil
		}

		payload, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("marshal order confirmation payload: %w", err)
		}
		err = s.outboxRepo.Enqueue(ctx, tx, &model.OutboxMessage{
			ID:            uuid.NewString(),
			Kind:          model.OutboxKindOrderConfirmation,
			AggregateID:   order.ID,
			Payload:       payload,
			Status:        model.OutboxStatusPending,
			NextAttemptAt: s.now(),
		})
		if err != nil {
			return fmt.Errorf("enqueue order confirmation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, userID string) ([]*model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetOrder hides other users' orders behind ErrOrderNotFound.
func (s *orderServiceImpl) GetOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}
