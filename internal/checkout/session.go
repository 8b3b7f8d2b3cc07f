// Package checkout drives the four-step checkout form: customer, delivery, payment, review.
//
// A Session only advances when the current step validates, may always step back, and re-checks
// every step on Submit. Ordered items leave the cart only after the order has been persisted.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"furnit-storefront/internal/model"
	"furnit-storefront/internal/validation"
)

type Step int

const (
	StepCustomerInfo Step = iota + 1
	StepDelivery
	StepPayment
	StepReview
	StepSubmitting
	StepSuccess
)

func (s Step) String() string {
	switch s {
	case StepCustomerInfo:
		return "customer-info"
	case StepDelivery:
		return "delivery"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	case StepSubmitting:
		return "submitting"
	case StepSuccess:
		return "success"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

const (
	DefaultMomoProvider  = "MTN"
	DefaultBankName      = "Bank of Kigali"
	DefaultSubmitTimeout = 15 * time.Second
)

// OrderStore persists an order and returns it with its server-assigned id.
type OrderStore interface {
	PlaceOrder(ctx context.Context, order *model.Order) (*model.Order, error)
}

// Notifier is told about a placed order. Implementations must return without waiting on delivery.
type Notifier interface {
	OrderPlaced(order *model.Order)
}

// Cart is the session's view of the shopper's cart.
type Cart interface {
	Items(ctx context.Context) ([]model.CartItem, error)
	// RemoveOrdered takes the ordered quantities out of the cart in one step.
	RemoveOrdered(ctx context.Context, ordered []model.CartItem) error
}

type Deps struct {
	Orders        OrderStore
	Notifier      Notifier
	Cart          Cart
	Logger        *log.Logger
	Now           func() time.Time
	SubmitTimeout time.Duration
}

type Session struct {
	mu sync.Mutex

	id     string
	userID string

	step     Step
	customer CustomerInfo
	delivery DeliveryInfo
	payment  PaymentInfo
	notes    string

	fieldErrors map[string]string
	errMsg      string
	inFlight    bool
	order       *model.Order

	deps Deps
}

func NewSession(id, userID string, deps Deps) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.SubmitTimeout <= 0 {
		deps.SubmitTimeout = DefaultSubmitTimeout
	}

	return &Session{
		id:     id,
		userID: userID,
		step:   StepCustomerInfo,
		delivery: DeliveryInfo{
			City:         DefaultCity,
			DeliveryTime: model.TimeBandMorning,
		},
		payment: PaymentInfo{
			Method:       model.PaymentMethodMobileMoney,
			MomoProvider: DefaultMomoProvider,
			BankName:     DefaultBankName,
		},
		fieldErrors: make(map[string]string),
		deps:        deps,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) UserID() string {
	return s.userID
}

// Order is the placed order once the session has succeeded.
func (s *Session) Order() *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Update carries a partial form edit; nil fields are left alone.
type Update struct {
	FullName            *string
	Email               *string
	Phone               *string
	Address             *string
	District            *string
	Sector              *string
	DeliveryDate        *string
	DeliveryTime        *model.TimeBand
	SpecialInstructions *string
	PaymentMethod       *model.PaymentMethod
	MomoNumber          *string
	MomoProvider        *string
	BankAccount         *string
	BankName            *string
	Notes               *string
}

// Apply edits the form. District is applied before sector, and a district change clears the sector.
// Enumerated values are checked before anything is written, so a rejected update changes nothing.
func (s *Session) Apply(u Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return err
	}

	district := s.delivery.District
	if u.District != nil {
		if *u.District != "" && !KnownDistrict(*u.District) {
			return ErrUnknownDistrict
		}
		district = *u.District
	}
	if u.Sector != nil && *u.Sector != "" && !SectorInDistrict(district, *u.Sector) {
		return ErrSectorNotInDistrict
	}
	if u.DeliveryTime != nil && !u.DeliveryTime.Valid() {
		return ErrUnknownTimeBand
	}
	if u.PaymentMethod != nil && !u.PaymentMethod.Valid() {
		return ErrUnknownPayment
	}

	s.clearEditedErrors(u)

	setString(&s.customer.FullName, u.FullName)
	setString(&s.customer.Email, u.Email)
	setString(&s.customer.Phone, u.Phone)
	setString(&s.delivery.Address, u.Address)
	if u.District != nil {
		s.selectDistrict(*u.District)
	}
	setString(&s.delivery.Sector, u.Sector)
	setString(&s.delivery.DeliveryDate, u.DeliveryDate)
	if u.DeliveryTime != nil {
		s.delivery.DeliveryTime = *u.DeliveryTime
	}
	setString(&s.delivery.SpecialInstructions, u.SpecialInstructions)
	if u.PaymentMethod != nil {
		s.payment.Method = *u.PaymentMethod
	}
	setString(&s.payment.MomoNumber, u.MomoNumber)
	setString(&s.payment.MomoProvider, u.MomoProvider)
	setString(&s.payment.BankAccount, u.BankAccount)
	setString(&s.payment.BankName, u.BankName)
	setString(&s.notes, u.Notes)

	return nil
}

// clearEditedErrors drops the stale verdict for every field the update touches.
func (s *Session) clearEditedErrors(u Update) {
	touched := map[string]bool{
		FieldFullName:      u.FullName != nil,
		FieldEmail:         u.Email != nil,
		FieldCustomerPhone: u.Phone != nil,
		FieldAddress:       u.Address != nil,
		FieldDistrict:      u.District != nil,
		FieldSector:        u.Sector != nil || u.District != nil,
		FieldDeliveryDate:  u.DeliveryDate != nil,
		FieldDeliveryTime:  u.DeliveryTime != nil,
		FieldPaymentMethod: u.PaymentMethod != nil,
		FieldMomoNumber:    u.MomoNumber != nil || u.PaymentMethod != nil,
		FieldBankAccount:   u.BankAccount != nil || u.PaymentMethod != nil,
	}
	for field, edited := range touched {
		if edited {
			delete(s.fieldErrors, field)
		}
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// SelectDistrict picks a district and resets the sector when the district changes.
func (s *Session) SelectDistrict(district string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return err
	}
	if !KnownDistrict(district) {
		return ErrUnknownDistrict
	}
	s.selectDistrict(district)
	return nil
}

func (s *Session) selectDistrict(district string) {
	if s.delivery.District != district {
		s.delivery.Sector = ""
		delete(s.fieldErrors, FieldSector)
	}
	s.delivery.District = district
}

func (s *Session) SelectSector(sector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return err
	}
	if !SectorInDistrict(s.delivery.District, sector) {
		return ErrSectorNotInDistrict
	}
	s.delivery.Sector = sector
	return nil
}

// CheckField validates one field as the shopper leaves it. Empty fields are not flagged here;
// the step check reports them.
func (s *Session) CheckField(field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value, msg string
	switch field {
	case FieldFullName:
		value = s.customer.FullName
		if !validation.FullName(value) {
			msg = blurFullName
		}
	case FieldEmail:
		value = s.customer.Email
		if !validation.Email(strings.TrimSpace(value)) {
			msg = blurEmail
		}
	case FieldCustomerPhone:
		value = s.customer.Phone
		if !validation.Phone(value) {
			msg = blurPhone
		}
	case FieldMomoNumber:
		value = s.payment.MomoNumber
		if !validation.Phone(value) {
			msg = blurPhone
		}
	case FieldBankAccount:
		value = s.payment.BankAccount
		if !validation.BankAccount(value) {
			msg = blurBankAccount
		}
	case FieldAddress:
		value = s.delivery.Address
		if !validation.Address(value) {
			msg = MsgAddressTooShort
		}
	case FieldDeliveryDate:
		value = s.delivery.DeliveryDate
		if err := validateDeliveryDate(value, s.deps.Now()); err != nil {
			msg = err.Message
		}
	default:
		return "", ErrUnknownField
	}

	if blank(value) || msg == "" {
		delete(s.fieldErrors, field)
		return "", nil
	}
	s.fieldErrors[field] = msg
	return msg, nil
}

// Advance validates the current step only and moves forward when it passes.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return err
	}
	if s.step >= StepReview {
		return ErrInvalidTransition
	}

	s.errMsg = ""
	if verr := s.validateStep(s.step); verr != nil {
		s.fail(verr)
		return verr
	}

	for _, field := range stepFields[s.step] {
		delete(s.fieldErrors, field)
	}
	s.step++
	return nil
}

// Retreat is always allowed from delivery, payment and review.
func (s *Session) Retreat() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return err
	}
	if s.step <= StepCustomerInfo {
		return ErrInvalidTransition
	}

	s.errMsg = ""
	s.fieldErrors = make(map[string]string)
	s.step--
	return nil
}

// Submit re-validates every step, persists the order, notifies without waiting, then removes the ordered items from the cart.
// Any failure leaves the session on the review step with a message and the cart untouched.
func (s *Session) Submit(ctx context.Context) (*model.Order, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if s.step == StepSuccess {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.step != StepReview {
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	}

	s.errMsg = ""
	for _, step := range []Step{StepCustomerInfo, StepDelivery, StepPayment} {
		if verr := s.validateStep(step); verr != nil {
			s.fail(verr)
			s.mu.Unlock()
			return nil, verr
		}
	}

	s.inFlight = true
	s.step = StepSubmitting
	customer, delivery, payment, notes := s.customer, s.delivery, s.payment, s.notes
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.deps.SubmitTimeout)
	defer cancel()

	order, err := s.place(ctx, customer, delivery, payment, notes)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if err != nil {
		s.step = StepReview
		if errors.Is(err, ErrEmptyCart) {
			s.errMsg = MsgEmptyCart
			return nil, err
		}
		s.errMsg = MsgSubmitFailed
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	s.order = order
	s.fieldErrors = make(map[string]string)
	s.step = StepSuccess
	return order, nil
}

func (s *Session) place(ctx context.Context, customer CustomerInfo, delivery DeliveryInfo, payment PaymentInfo, notes string) (*model.Order, error) {
	items, err := s.deps.Cart.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	draft, err := buildOrder(s.userID, customer, delivery, payment, notes, items, s.deps.Now())
	if err != nil {
		return nil, err
	}

	order, err := s.deps.Orders.PlaceOrder(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	if s.deps.Notifier != nil {
		s.deps.Notifier.OrderPlaced(order)
	}

	// the order exists now; only the ordered units leave the cart, so lines added
	// meanwhile survive, and a cart that fails to update is stale, not lost
	if err := s.deps.Cart.RemoveOrdered(context.WithoutCancel(ctx), items); err != nil && s.deps.Logger != nil {
		s.deps.Logger.Warnf("clear cart for user %s after order %s: %v", s.userID, order.ID, err)
	}

	return order, nil
}

func buildOrder(userID string, customer CustomerInfo, delivery DeliveryInfo, payment PaymentInfo, notes string, items []model.CartItem, now time.Time) (*model.Order, error) {
	date, err := parseDate(delivery.DeliveryDate, now.Location())
	if err != nil {
		return nil, fmt.Errorf("parse delivery date: %w", err)
	}

	var details string
	if payment.Method == model.PaymentMethodMobileMoney {
		details = fmt.Sprintf("%s - %s", orDefault(payment.MomoProvider, DefaultMomoProvider), validation.NormalizePhone(payment.MomoNumber))
	} else {
		details = fmt.Sprintf("%s - %s", orDefault(payment.BankName, DefaultBankName), validation.StripSpaces(payment.BankAccount))
	}

	totals := model.ComputeTotals(items)
	orderItems := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, item.ToOrderItem())
	}

	return &model.Order{
		UserID:              userID,
		CustomerName:        strings.TrimSpace(customer.FullName),
		CustomerEmail:       strings.ToLower(strings.TrimSpace(customer.Email)),
		CustomerPhone:       validation.NormalizePhone(customer.Phone),
		DeliveryAddress:     validation.Sanitize(delivery.Address),
		DeliveryCity:        orDefault(delivery.City, DefaultCity),
		DeliveryDistrict:    delivery.District,
		DeliverySector:      delivery.Sector,
		DeliveryDate:        date,
		DeliveryTime:        delivery.DeliveryTime,
		SpecialInstructions: optional(validation.Sanitize(delivery.SpecialInstructions)),
		PaymentMethod:       payment.Method,
		PaymentDetails:      details,
		OrderNotes:          optional(validation.Sanitize(notes)),
		Subtotal:            totals.Subtotal,
		DeliveryFee:         totals.DeliveryFee,
		Total:               totals.Total,
		Status:              model.OrderStatusPending,
		Items:               orderItems,
		CreatedAt:           now,
	}, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func (s *Session) validateStep(step Step) *ValidationError {
	switch step {
	case StepCustomerInfo:
		return validateCustomer(s.customer)
	case StepDelivery:
		return validateDelivery(s.delivery, s.deps.Now())
	case StepPayment:
		return validatePayment(s.payment)
	}
	return nil
}

// stepFields lists the form fields each step validates.
var stepFields = map[Step][]string{
	StepCustomerInfo: {FieldFullName, FieldEmail, FieldCustomerPhone},
	StepDelivery:     {FieldAddress, FieldDistrict, FieldSector, FieldDeliveryDate, FieldDeliveryTime},
	StepPayment:      {FieldPaymentMethod, FieldMomoNumber, FieldBankAccount},
}

func (s *Session) fail(verr *ValidationError) {
	s.errMsg = verr.Message
	s.fieldErrors[verr.Field] = verr.Message
}

func (s *Session) editable() error {
	switch {
	case s.inFlight:
		return ErrSubmitInFlight
	case s.step == StepSuccess:
		return ErrSessionClosed
	}
	return nil
}

// View is a point-in-time copy of the form for rendering.
type View struct {
	ID          string            `json:"id"`
	Step        int               `json:"step"`
	StepName    string            `json:"step_name"`
	Customer    CustomerInfo      `json:"customer"`
	Delivery    DeliveryInfo      `json:"delivery"`
	Payment     PaymentInfo       `json:"payment"`
	Notes       string            `json:"notes"`
	FieldErrors map[string]string `json:"field_errors"`
	Error       string            `json:"error,omitempty"`
	Submitting  bool              `json:"submitting"`
	Success     bool              `json:"success"`
	OrderID     string            `json:"order_id,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	fieldErrors := make(map[string]string, len(s.fieldErrors))
	for k, v := range s.fieldErrors {
		fieldErrors[k] = v
	}

	v := View{
		ID:          s.id,
		Step:        int(s.step),
		StepName:    s.step.String(),
		Customer:    s.customer,
		Delivery:    s.delivery,
		Payment:     s.payment,
		Notes:       s.notes,
		FieldErrors: fieldErrors,
		Error:       s.errMsg,
		Submitting:  s.inFlight,
		Success:     s.step == StepSuccess,
	}
	if s.order != nil {
		v.OrderID = s.order.ID
	}
	return v
}
