package checkout

import (
	"strings"
	"time"

	"furnit-storefront/internal/model"
	"furnit-storefront/internal/validation"
)

const DateLayout = "2006-01-02"

// Form field keys, shared by the error map and CheckField.
const (
	FieldFullName      = "fullName"
	FieldEmail         = "email"
	FieldCustomerPhone = "customerPhone"
	FieldAddress       = "address"
	FieldDistrict      = "district"
	FieldSector        = "sector"
	FieldDeliveryDate  = "deliveryDate"
	FieldDeliveryTime  = "deliveryTime"
	FieldPaymentMethod = "paymentMethod"
	FieldMomoNumber    = "momoNumber"
	FieldBankAccount   = "bankAccount"
)

const (
	MsgFullNameRequired     = "Please enter your full name"
	MsgFullNameInvalid      = "Please enter your full name (first and last name)"
	MsgEmailRequired        = "Please enter your email address"
	MsgEmailInvalid         = "Please enter a valid email address"
	MsgPhoneRequired        = "Please enter your phone number"
	MsgPhoneInvalid         = "Please enter a valid Rwanda phone number (e.g., +250 7XX XXX XXX or 07XX XXX XXX)"
	MsgAddressRequired      = "Please enter your delivery address"
	MsgAddressTooShort      = "Please enter a complete delivery address (at least 10 characters)"
	MsgDistrictRequired     = "Please select a district"
	MsgSectorRequired       = "Please select a sector"
	MsgDeliveryDateRequired = "Please select a delivery date"
	MsgDeliveryDateInvalid  = "Please select a valid delivery date"
	MsgDeliveryTimeInvalid  = "Please select a delivery time"
	MsgPaymentMethodInvalid = "Please select a payment method"
	MsgMomoRequired         = "Please enter your Mobile Money number"
	MsgMomoInvalid          = "Please enter a valid Mobile Money number (e.g., +250 7XX XXX XXX)"
	MsgBankAccountRequired  = "Please enter your bank account number"
	MsgBankAccountInvalid   = "Please enter a valid bank account number (10-16 digits)"
	MsgEmptyCart            = "Your cart is empty"
	MsgSubmitFailed         = "Failed to place order. Please try again."
)

// blur messages are softer than the step messages
const (
	blurFullName    = "Please enter first and last name"
	blurEmail       = "Invalid email address"
	blurPhone       = "Invalid Rwanda phone number format"
	blurBankAccount = "Invalid bank account number (10-16 digits required)"
)

type CustomerInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type DeliveryInfo struct {
	Address             string         `json:"address"`
	City                string         `json:"city"`
	District            string         `json:"district"`
	Sector              string         `json:"sector"`
	DeliveryDate        string         `json:"delivery_date"`
	DeliveryTime        model.TimeBand `json:"delivery_time"`
	SpecialInstructions string         `json:"special_instructions"`
}

type PaymentInfo struct {
	Method       model.PaymentMethod `json:"method"`
	MomoNumber   string              `json:"momo_number"`
	MomoProvider string              `json:"momo_provider"`
	BankAccount  string              `json:"bank_account"`
	BankName     string              `json:"bank_name"`
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validateCustomer(c CustomerInfo) *ValidationError {
	switch {
	case blank(c.FullName):
		return invalid(FieldFullName, MsgFullNameRequired)
	case !validation.FullName(c.FullName):
		return invalid(FieldFullName, MsgFullNameInvalid)
	case blank(c.Email):
		return invalid(FieldEmail, MsgEmailRequired)
	case !validation.Email(strings.TrimSpace(c.Email)):
		return invalid(FieldEmail, MsgEmailInvalid)
	case blank(c.Phone):
		return invalid(FieldCustomerPhone, MsgPhoneRequired)
	case !validation.Phone(c.Phone):
		return invalid(FieldCustomerPhone, MsgPhoneInvalid)
	}
	return nil
}

func validateDelivery(d DeliveryInfo, now time.Time) *ValidationError {
	switch {
	case blank(d.Address):
		return invalid(FieldAddress, MsgAddressRequired)
	case !validation.Address(d.Address):
		return invalid(FieldAddress, MsgAddressTooShort)
	case d.District == "" || !KnownDistrict(d.District):
		return invalid(FieldDistrict, MsgDistrictRequired)
	case d.Sector == "" || !SectorInDistrict(d.District, d.Sector):
		return invalid(FieldSector, MsgSectorRequired)
	case blank(d.DeliveryDate):
		return invalid(FieldDeliveryDate, MsgDeliveryDateRequired)
	}

	if err := validateDeliveryDate(d.DeliveryDate, now); err != nil {
		return err
	}
	if !d.DeliveryTime.Valid() {
		return invalid(FieldDeliveryTime, MsgDeliveryTimeInvalid)
	}
	return nil
}

func validateDeliveryDate(raw string, now time.Time) *ValidationError {
	date, err := parseDate(raw, now.Location())
	if err != nil {
		return invalid(FieldDeliveryDate, MsgDeliveryDateInvalid)
	}
	if res := validation.DeliveryDate(date, now); !res.Valid {
		return invalid(FieldDeliveryDate, res.Message)
	}
	return nil
}

func validatePayment(p PaymentInfo) *ValidationError {
	switch p.Method {
	case model.PaymentMethodMobileMoney:
		if blank(p.MomoNumber) {
			return invalid(FieldMomoNumber, MsgMomoRequired)
		}
		if !validation.Phone(p.MomoNumber) {
			return invalid(FieldMomoNumber, MsgMomoInvalid)
		}
	case model.PaymentMethodBankTransfer:
		if blank(p.BankAccount) {
			return invalid(FieldBankAccount, MsgBankAccountRequired)
		}
		if !validation.BankAccount(p.BankAccount) {
			return invalid(FieldBankAccount, MsgBankAccountInvalid)
		}
	default:
		return invalid(FieldPaymentMethod, MsgPaymentMethodInvalid)
	}
	return nil
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
}
