package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"furnit-storefront/internal/model"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	List(ctx context.Context, category string) ([]*model.Product, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: "scandi-lounge-chair", Name: "Scandi Lounge Chair", Price: decimal.NewFromInt(890), Image: "/assets/chair.png", Category: "Chairs"},
		{ID: "mineral-side-table", Name: "Mineral Side Table", Price: decimal.NewFromInt(450), Image: "/assets/collection.png", Category: "Tables"},
		{ID: "soft-boucle-sofa", Name: "Soft Boucle Sofa", Price: decimal.NewFromInt(2400), Image: "/assets/hero.png", Category: "Sofas"},
		{ID: "nordic-floor-lamp", Name: "Nordic Floor Lamp", Price: decimal.NewFromInt(320), Image: "/assets/lamp.png", Category: "Lighting"},
		{ID: "minimalist-shelf", Name: "Minimalist Shelf", Price: decimal.NewFromInt(580), Image: "/assets/shelf.png", Category: "Storage"},
		{ID: "velvet-armchair", Name: "Velvet Armchair", Price: decimal.NewFromInt(1100), Image: "/assets/armchair.png", Category: "Chairs"},
		{ID: "oak-dining-table", Name: "Oak Dining Table", Price: decimal.NewFromInt(1850), Image: "/assets/dining-table.png", Category: "Tables"},
		{ID: "leather-sectional", Name: "Leather Sectional", Price: decimal.NewFromInt(3200), Image: "/assets/sectional.png", Category: "Sofas"},
		{ID: "modern-pendant-light", Name: "Modern Pendant Light", Price: decimal.NewFromInt(280), Image: "/assets/pendant.png", Category: "Lighting"},
		{ID: "upholstered-bed-frame", Name: "Upholstered Bed Frame", Price: decimal.NewFromInt(1650), Image: "/assets/bed.png", Category: "Bedroom"},
		{ID: "marble-coffee-table", Name: "Marble Coffee Table", Price: decimal.NewFromInt(920), Image: "/assets/coffee-table.png", Category: "Tables"},
		{ID: "accent-chair-set", Name: "Accent Chair Set", Price: decimal.NewFromInt(1450), Image: "/assets/accent-chairs.png", Category: "Chairs"},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) List(ctx context.Context, category string) ([]*model.Product, error) {
	var products []*model.Product
	q := r.db.WithContext(ctx).Order("name ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}

	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}
