// Package email renders the storefront's transactional messages.
package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/shopspring/decimal"

	"furnit-storefront/internal/client"
	"furnit-storefront/internal/model"
)

const SupportAddress = "support@furnit.com"

const dateLayout = "1/2/2006"

//go:embed templates/*
var templateFS embed.FS

type Renderer struct {
	frontendURL string
	now         func() time.Time
	html        *htmltemplate.Template
	text        *texttemplate.Template
}

func NewRenderer(frontendURL string, now func() time.Time) (*Renderer, error) {
	if now == nil {
		now = time.Now
	}

	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}

	return &Renderer{
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         now,
		html:        html,
		text:        text,
	}, nil
}

type common struct {
	Support string
	Year    int
	Link    string
}

type orderLine struct {
	Name      string
	Quantity  int
	LineTotal string
}

type orderView struct {
	common
	OrderID      string
	CustomerName string
	OrderDate    string
	Address      string
	Sector       string
	District     string
	City         string
	DeliveryDate string
	DeliveryTime string
	Items        []orderLine
	Subtotal     string
	DeliveryFee  string
	Total        string
	PaymentLabel string
	Notes        string
}

type accountView struct {
	common
	Email            string
	Name             string
	FreeDeliveryOver string
}

func (r *Renderer) OrderConfirmation(order *model.Order) (*client.MailMessage, error) {
	view := orderView{
		common:       r.common("/dashboard"),
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		OrderDate:    formatDate(order.CreatedAt),
		Address:      order.DeliveryAddress,
		Sector:       order.DeliverySector,
		District:     order.DeliveryDistrict,
		City:         order.DeliveryCity,
		DeliveryDate: formatDate(order.DeliveryDate),
		DeliveryTime: string(order.DeliveryTime),
		Subtotal:     money(order.Subtotal),
		DeliveryFee:  money(order.DeliveryFee),
		Total:        money(order.Total),
		PaymentLabel: order.PaymentMethod.Label(),
	}
	if order.DeliveryFee.IsZero() {
		view.DeliveryFee = "FREE"
	}
	if order.OrderNotes != nil {
		view.Notes = *order.OrderNotes
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, orderLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			LineTotal: money(item.LineTotal()),
		})
	}

	return r.render(order.CustomerEmail, fmt.Sprintf("Order Confirmation - #%s", order.ID), "order_confirmation", view)
}

func (r *Renderer) PasswordReset(email, rawToken string) (*client.MailMessage, error) {
	view := accountView{
		common: r.common(""),
		Email:  email,
	}
	view.Link = r.ResetLink(rawToken)
	return r.render(email, "Reset Your Password - Furnit", "password_reset", view)
}

func (r *Renderer) Welcome(email, name string) (*client.MailMessage, error) {
	view := accountView{
		common:           r.common("/products"),
		Email:            email,
		Name:             name,
		FreeDeliveryOver: money(model.FreeDeliveryThreshold),
	}
	return r.render(email, "Welcome to Furnit!", "welcome", view)
}

func (r *Renderer) PasswordChanged(email, name string) (*client.MailMessage, error) {
	view := accountView{
		common: r.common("/login"),
		Email:  email,
		Name:   name,
	}
	return r.render(email, "Password Changed Successfully - Furnit", "password_changed", view)
}

// ResetLink embeds the raw token as the single query parameter of the frontend reset page.
func (r *Renderer) ResetLink(rawToken string) string {
	return r.frontendURL + "/reset-password?token=" + url.QueryEscape(rawToken)
}

func (r *Renderer) common(path string) common {
	return common{
		Support: SupportAddress,
		Year:    r.now().Year(),
		Link:    r.frontendURL + path,
	}
}

func (r *Renderer) render(to, subject, name string, data interface{}) (*client.MailMessage, error) {
	var html, text bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return nil, fmt.Errorf("render %s html: %w", name, err)
	}
	if err := r.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return nil, fmt.Errorf("render %s text: %w", name, err)
	}

	return &client.MailMessage{
		To:      to,
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
