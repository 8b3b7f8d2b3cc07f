package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"furnit-storefront/internal/checkout"
	"furnit-storefront/internal/model"
)

// SessionTTL is how long an untouched checkout survives.
const SessionTTL = time.Hour

var ErrSessionNotFound = errors.New("checkout session not found")

type CheckoutView struct {
	checkout.View
	Items  []model.CartItem `json:"items"`
	Totals model.Totals     `json:"totals"`
}

type CheckoutService interface {
	Start(ctx context.Context, userID string) (*CheckoutView, error)
	Get(ctx context.Context, userID, sessionID string) (*CheckoutView, error)
	Update(ctx context.Context, userID, sessionID string, u checkout.Update) (*CheckoutView, error)
	CheckField(ctx context.Context, userID, sessionID, field string) (*CheckoutView, error)
	// Advance, Retreat and Submit return the current view alongside a rejected transition.
	Advance(ctx context.Context, userID, sessionID string) (*CheckoutView, error)
	Retreat(ctx context.Context, userID, sessionID string) (*CheckoutView, error)
	Submit(ctx context.Context, userID, sessionID string) (*CheckoutView, error)
}

type sessionEntry struct {
	session  *checkout.Session
	lastSeen time.Time
}

type checkoutServiceImpl struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry

	carts         CartService
	orders        checkout.OrderStore
	notifier      checkout.Notifier
	logger        *log.Logger
	submitTimeout time.Duration
	now           func() time.Time
}

func NewCheckoutService(
	carts CartService,
	orders checkout.OrderStore,
	notifier checkout.Notifier,
	submitTimeout time.Duration,
	logger *log.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		sessions:      make(map[string]*sessionEntry),
		carts:         carts,
		orders:        orders,
		notifier:      notifier,
		logger:        logger,
		submitTimeout: submitTimeout,
		now:           time.Now,
	}
}

func (s *checkoutServiceImpl) Start(ctx context.Context, userID string) (*CheckoutView, error) {
	cart := s.carts.ForUser(userID)
	items, err := cart.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, checkout.ErrEmptyCart
	}

	session := checkout.NewSession(uuid.NewString(), userID, checkout.Deps{
		Orders:        s.orders,
		Notifier:      s.notifier,
		Cart:          cart,
		Logger:        s.logger,
		Now:           s.now,
		SubmitTimeout: s.submitTimeout,
	})

	s.mu.Lock()
	s.evictIdle()
	s.sessions[session.ID()] = &sessionEntry{session: session, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Debugf("checkout session %s started for user %s", session.ID(), userID)
	return s.view(ctx, session)
}

func (s *checkoutServiceImpl) Get(ctx context.Context, userID, sessionID string) (*CheckoutView, error) {
	session, err := s.find(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, session)
}

func (s *checkoutServiceImpl) Update(ctx context.Context, userID, sessionID string, u checkout.Update) (*CheckoutView, error) {
	session, err := s.find(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Apply(u); err != nil {
		return nil, err
	}
	return s.view(ctx, session)
}

func (s *checkoutServiceImpl) CheckField(ctx context.Context, userID, sessionID, field string) (*CheckoutView, error) {
	session, err := s.find(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := session.CheckField(field); err != nil {
		return nil, err
	}
	return s.view(ctx, session)
}

func (s *checkoutServiceImpl) Advance(ctx context.Context, userID, sessionID string) (*CheckoutView, error) {
	return s.transition(ctx, userID, sessionID, func(session *checkout.Session) error {
		return session.Advance()
	})
}

func (s *checkoutServiceImpl) Retreat(ctx context.Context, userID, sessionID string) (*CheckoutView, error) {
	return s.transition(ctx, userID, sessionID, func(session *checkout.Session) error {
		return session.Retreat()
	})
}

func (s *checkoutServiceImpl) Submit(ctx context.Context, userID, sessionID string) (*CheckoutView, error) {
	return s.transition(ctx, userID, sessionID, func(session *checkout.Session) error {
		order, err := session.Submit(ctx)
		if err != nil {
			if errors.Is(err, checkout.ErrSubmitFailed) {
				s.logger.Errorf("submit checkout %s for user %s: %v", sessionID, userID, err)
			}
			return err
		}
		s.logger.Infof("order %s placed by user %s total %s", order.ID, userID, order.Total.StringFixed(2))
		return nil
	})
}

func (s *checkoutServiceImpl) transition(ctx context.Context, userID, sessionID string, fn func(*checkout.Session) error) (*CheckoutView, error) {
	session, err := s.find(userID, sessionID)
	if err != nil {
		return nil, err
	}

	opErr := fn(session)

	view, err := s.view(ctx, session)
	if err != nil {
		return nil, err
	}
	return view, opErr
}

func (s *checkoutServiceImpl) find(userID, sessionID string) (*checkout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok || entry.session.UserID() != userID {
		return nil, ErrSessionNotFound
	}
	if s.now().Sub(entry.lastSeen) > SessionTTL {
		delete(s.sessions, sessionID)
		return nil, ErrSessionNotFound
	}
	entry.lastSeen = s.now()
	return entry.session, nil
}

// evictIdle must be called with mu held.
func (s *checkoutServiceImpl) evictIdle() {
	now := s.now()
	for id, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > SessionTTL {
			delete(s.sessions, id)
		}
	}
}

func (s *checkoutServiceImpl) view(ctx context.Context, session *checkout.Session) (*CheckoutView, error) {
	v := session.View()

	if order := session.Order(); order != nil {
		return &CheckoutView{
			View:  v,
			Items: []model.CartItem{},
			Totals: model.Totals{
				Subtotal:    order.Subtotal,
				DeliveryFee: order.DeliveryFee,
				Total:       order.Total,
			},
		}, nil
	}

	items, err := s.carts.ForUser(session.UserID()).Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("load checkout cart: %w", err)
	}

	return &CheckoutView{
		View:   v,
		Items:  items,
		Totals: model.ComputeTotals(items),
	}, nil
}
