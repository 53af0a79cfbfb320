package checkout

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andeanlabs/farmakiosk/internal/domain/cart"
	"github.com/andeanlabs/farmakiosk/internal/domain/catalog"
)

// FieldTag identifies a field that blocks submission. Tags are stable wire
// values surfaced to the UI.
type FieldTag string

const (
	FieldCart         FieldTag = "cart"
	FieldName         FieldTag = "name"
	FieldPhone        FieldTag = "phone"
	FieldAddressLine1 FieldTag = "addressLine1"
	FieldCity         FieldTag = "city"
	FieldZone         FieldTag = "zone"
	FieldWindow       FieldTag = "deliveryWindow"
)

// Result is a validation verdict: OK, or the full list of missing fields.
type Result struct {
	OK      bool       `json:"ok"`
	Missing []FieldTag `json:"missing,omitempty"`
}

// Mobile numbers are ten digits with the national mobile prefix.
var mobilePattern = regexp.MustCompile(`^09\d{8}$`)

// customerForm carries the always-required fields through validator/v10.
// Name is trimmed before validation.
type customerForm struct {
	Name  string `validate:"min=2"`
	Phone string `validate:"ecmobile"`
}

// deliveryForm carries the delivery-only fields.
type deliveryForm struct {
	Line1 string `validate:"min=5"`
	City  string `validate:"min=2"`
	Zone  string `validate:"min=2"`
}

var formFieldTags = map[string]FieldTag{
	"Name":  FieldName,
	"Phone": FieldPhone,
	"Line1": FieldAddressLine1,
	"City":  FieldCity,
	"Zone":  FieldZone,
}

// Validator evaluates checkout readiness. It is stateless and safe for
// reuse across submissions.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds a Validator with the mobile-phone rule registered.
func NewValidator() *Validator {
	v := validator.New()
	// Registration on a fresh instance with a well-formed tag cannot fail.
	_ = v.RegisterValidation("ecmobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate evaluates every rule independently and reports all failures, so
// the UI can list what is missing instead of just blocking. Rules: cart
// non-empty; trimmed name >= 2; phone is a ten-digit mobile number; for
// delivery additionally line1 >= 5, city >= 2, zone >= 2, and a window
// chosen from the currently valid list. It has no side effects.
func (c *Validator) Validate(items []cart.Item, customer CustomerInfo, f Fulfillment, windows []catalog.DeliveryWindow) Result {
	var missing []FieldTag

	if len(items) == 0 {
		missing = append(missing, FieldCart)
	}

	missing = append(missing, c.collect(customerForm{
		Name:  strings.TrimSpace(customer.Name),
		Phone: strings.TrimSpace(customer.Phone),
	})...)

	if f.IsDelivery() {
		d := f.Delivery
		if d == nil {
			d = &DeliveryInfo{}
		}
		missing = append(missing, c.collect(deliveryForm{
			Line1: strings.TrimSpace(d.Address.Line1),
			City:  strings.TrimSpace(d.Address.City),
			Zone:  strings.TrimSpace(d.Address.Zone),
		})...)

		if !windowChosen(d.WindowID, windows) {
			missing = append(missing, FieldWindow)
		}
	}

	return Result{OK: len(missing) == 0, Missing: missing}
}

// collect runs validator/v10 on form and maps every field error to its tag.
func (c *Validator) collect(form any) []FieldTag {
	err := c.v.Struct(form)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// Struct-level failure without field detail; nothing to map.
		return nil
	}

	tags := make([]FieldTag, 0, len(verrs))
	for _, fe := range verrs {
		if tag, ok := formFieldTags[fe.StructField()]; ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

// windowChosen reports whether id names a window in the current list. An
// empty list can never satisfy the rule.
func windowChosen(id string, windows []catalog.DeliveryWindow) bool {
	if id == "" {
		return false
	}
	for _, w := range windows {
		if w.ID == id {
			return true
		}
	}
	return false
}
