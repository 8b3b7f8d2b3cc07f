package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"furnit-storefront/internal/cart"
	"furnit-storefront/internal/checkout"
	"furnit-storefront/internal/model"
	"furnit-storefront/internal/repository"
)

var ErrCartItemNotFound = errors.New("item not in cart")

type CartView struct {
	Items []model.CartItem `json:"items"`
	Count int              `json:"count"`
	model.Totals
}

type CartService interface {
	Get(ctx context.Context, userID string) (*CartView, error)
	AddItem(ctx context.Context, userID, productID string) (*CartView, error)
	UpdateQuantity(ctx context.Context, userID, productID string, delta int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (*CartView, error)
	Clear(ctx context.Context, userID string) error
	// ForUser adapts one shopper's cart to the checkout flow.
	ForUser(userID string) checkout.Cart
}

type cartServiceImpl struct {
	carts       repository.CartRepository
	productRepo repository.ProductRepository
	locks       sync.Map // user id -> *sync.Mutex
}

func NewCartService(carts repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartServiceImpl{
		carts:       carts,
		productRepo: productRepo,
	}
}

func (s *cartServiceImpl) Get(ctx context.Context, userID string) (*CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return viewOf(c), nil
}

// AddItem prices the line from the catalog, never from the client.
func (s *cartServiceImpl) AddItem(ctx context.Context, userID, productID string) (*CartView, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		c.Add(product)
		return nil
	})
}

func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, userID, productID string, delta int) (*CartView, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		for _, item := range c.Items() {
			if item.ProductID == productID {
				c.UpdateQuantity(productID, delta)
				return nil
			}
		}
		return ErrCartItemNotFound
	})
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, productID string) (*CartView, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		if !c.Remove(productID) {
			return ErrCartItemNotFound
		}
		return nil
	})
}

func (s *cartServiceImpl) Clear(ctx context.Context, userID string) error {
	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.carts.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *cartServiceImpl) ForUser(userID string) checkout.Cart {
	return &userCart{svc: s, userID: userID}
}

func (s *cartServiceImpl) mutate(ctx context.Context, userID string, fn func(c *cart.Cart) error) (*CartView, error) {
	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()

	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, userID, c.Items()); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return viewOf(c), nil
}

func (s *cartServiceImpl) load(ctx context.Context, userID string) (*cart.Cart, error) {
	items, err := s.carts.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart.New(items), nil
}

func (s *cartServiceImpl) lock(userID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func viewOf(c *cart.Cart) *CartView {
	return &CartView{
		Items:  c.Items(),
		Count:  c.Count(),
		Totals: c.Totals(),
	}
}

type userCart struct {
	svc    *cartServiceImpl
	userID string
}

func (u *userCart) Items(ctx context.Context) ([]model.CartItem, error) {
	c, err := u.svc.load(ctx, u.userID)
	if err != nil {
		return nil, err
	}
	return c.Items(), nil
}

// RemoveOrdered runs under the same per-user lock as every other cart mutation.
func (u *userCart) RemoveOrdered(ctx context.Context, ordered []model.CartItem) error {
	_, err := u.svc.mutate(ctx, u.userID, func(c *cart.Cart) error {
		c.Deduct(ordered)
		return nil
	})
	return err
}
