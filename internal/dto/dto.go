package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"furnit-storefront/internal/checkout"
	"furnit-storefront/internal/model"
)

// mailer payloads keep the camelCase names the storefront frontend already sends

type OrderItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
}

type OrderConfirmationRequest struct {
	OrderID          string          `json:"orderId" validate:"required"`
	CustomerName     string          `json:"customerName"`
	CustomerEmail    string          `json:"customerEmail" validate:"required"`
	DeliveryAddress  string          `json:"deliveryAddress"`
	DeliveryCity     string          `json:"deliveryCity"`
	DeliveryDistrict string          `json:"deliveryDistrict"`
	DeliverySector   string          `json:"deliverySector"`
	DeliveryDate     string          `json:"deliveryDate"`
	DeliveryTime     string          `json:"deliveryTime"`
	PaymentMethod    string          `json:"paymentMethod"`
	Items            []OrderItem     `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DeliveryFee      decimal.Decimal `json:"deliveryFee"`
	Total            decimal.Decimal `json:"total"`
	OrderNotes       *string         `json:"orderNotes"`
	CreatedAt        string          `json:"createdAt"`
}

func (r *OrderConfirmationRequest) ToOrder() *model.Order {
	order := &model.Order{
		ID:               r.OrderID,
		CustomerName:     r.CustomerName,
		CustomerEmail:    strings.TrimSpace(r.CustomerEmail),
		DeliveryAddress:  r.DeliveryAddress,
		DeliveryCity:     r.DeliveryCity,
		DeliveryDistrict: r.DeliveryDistrict,
		DeliverySector:   r.DeliverySector,
		DeliveryDate:     parseLooseTime(r.DeliveryDate),
		DeliveryTime:     model.TimeBand(r.DeliveryTime),
		PaymentMethod:    model.PaymentMethod(r.PaymentMethod),
		Subtotal:         r.Subtotal,
		DeliveryFee:      r.DeliveryFee,
		Total:            r.Total,
		OrderNotes:       r.OrderNotes,
		CreatedAt:        parseLooseTime(r.CreatedAt),
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			Price:     item.Price,
			Image:     item.Image,
			Category:  item.Category,
			Quantity:  item.Quantity,
		})
	}
	return order
}

// parseLooseTime accepts RFC 3339 timestamps and bare dates; anything else is zero.
func parseLooseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, checkout.DateLayout} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	return time.Time{}
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

type VerifyResetTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type VerifyResetTokenResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type ResetPasswordResponse struct {
	Success   bool   `json:"success"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	Assertion string `json:"assertion"`
}

type ConsumeAssertionRequest struct {
	Assertion string `json:"assertion" validate:"required"`
}

type AccountNoticeRequest struct {
	Email string `json:"email" validate:"required"`
	Name  string `json:"name" validate:"required"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type UpdateCartItemRequest struct {
	Delta int `json:"delta" validate:"required,min=-100,max=100"`
}

// UpdateCheckoutRequest is a partial edit of the checkout form; omitted fields are unchanged.
type UpdateCheckoutRequest struct {
	FullName            *string              `json:"fullName"`
	Email               *string              `json:"email"`
	Phone               *string              `json:"phone"`
	Address             *string              `json:"address"`
	District            *string              `json:"district"`
	Sector              *string              `json:"sector"`
	DeliveryDate        *string              `json:"deliveryDate"`
	DeliveryTime        *model.TimeBand      `json:"deliveryTime"`
	SpecialInstructions *string              `json:"specialInstructions" validate:"omitempty,max=1000"`
	PaymentMethod       *model.PaymentMethod `json:"paymentMethod"`
	MomoNumber          *string              `json:"momoNumber"`
	MomoProvider        *string              `json:"momoProvider" validate:"omitempty,max=32"`
	BankAccount         *string              `json:"bankAccount"`
	BankName            *string              `json:"bankName" validate:"omitempty,max=64"`
	OrderNotes          *string              `json:"orderNotes" validate:"omitempty,max=1000"`
}

func (r *UpdateCheckoutRequest) ToUpdate() checkout.Update {
	return checkout.Update{
		FullName:            r.FullName,
		Email:               r.Email,
		Phone:               r.Phone,
		Address:             r.Address,
		District:            r.District,
		Sector:              r.Sector,
		DeliveryDate:        r.DeliveryDate,
		DeliveryTime:        r.DeliveryTime,
		SpecialInstructions: r.SpecialInstructions,
		PaymentMethod:       r.PaymentMethod,
		MomoNumber:          r.MomoNumber,
		MomoProvider:        r.MomoProvider,
		BankAccount:         r.BankAccount,
		BankName:            r.BankName,
		Notes:               r.OrderNotes,
	}
}

type CheckFieldRequest struct {
	Field string `json:"field" validate:"required"`
}

type CheckoutErrorResponse struct {
	Success  bool        `json:"success"`
	Error    string      `json:"error"`
	Checkout interface{} `json:"checkout,omitempty"`
}
