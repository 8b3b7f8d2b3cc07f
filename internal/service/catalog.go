package service

import (
	"context"

	"furnit-storefront/internal/model"
	"furnit-storefront/internal/repository"
)

type CatalogService interface {
	ListProducts(ctx context.Context, category string) ([]*model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
}

type catalogServiceImpl struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(
	productRepo repository.ProductRepository,
) CatalogService {
	return &catalogServiceImpl{
		productRepo: productRepo,
	}
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, category string) ([]*model.Product, error) {
	return s.productRepo.List(ctx, category)
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, productID)
}
