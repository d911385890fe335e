package client

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/CharlesX20/chimestradingstore/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	MaxReceiptBytes = 8 << 20
	pickupGrace     = 5 * time.Minute
)

var phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{7,25}$`)

// CheckoutForm is what the buyer filled in at checkout. Receipt holds the raw
// bytes of the payment proof image.
type CheckoutForm struct {
	BuyerName          string                `validate:"required,notblank"`
	BuyerPhone         string                `validate:"required,phone"`
	PickupDatetime     string                `validate:"required"`
	Items              []models.CheckoutItem `validate:"required,min=1"`
	Total              float64
	Receipt            []byte `validate:"required,min=1"`
	ReceiptContentType string
}

// PreflightError names the first form field that failed.
type PreflightError struct {
	Field   string
	Message string
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

var fieldMessages = map[string]string{
	"BuyerName":      "Please enter your name",
	"BuyerPhone":     "Please enter a valid phone number",
	"PickupDatetime": "Please choose a pickup date and time",
	"Items":          "Your cart is empty",
	"Receipt":        "Please attach your payment receipt",
}

// Preflight runs the checks the storefront performs before submitting. The
// server repeats the authoritative ones. now is the buyer's clock and loc the
// store's time zone.
func Preflight(form *CheckoutForm, now time.Time, loc *time.Location) error {
	if err := formValidator.Struct(form); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			field := verrs[0].Field()
			return &PreflightError{Field: field, Message: fieldMessages[field]}
		}
		return err
	}

	pickup, err := models.ParsePickup(form.PickupDatetime, loc)
	if err != nil {
		return &PreflightError{Field: "PickupDatetime", Message: "Pickup date and time is not valid"}
	}
	if pickup.Before(now.Add(-pickupGrace)) {
		return &PreflightError{Field: "PickupDatetime", Message: "Pickup time cannot be in the past"}
	}

	if len(form.Receipt) > MaxReceiptBytes {
		return &PreflightError{Field: "Receipt", Message: "Receipt must be 8MB or smaller"}
	}
	if !isImageType(receiptContentType(form)) {
		return &PreflightError{Field: "Receipt", Message: "Receipt must be an image"}
	}
	return nil
}

// heifBrands maps ISO-BMFF major brands to their MIME type.
var heifBrands = map[string]string{
	"heic": "image/heic",
	"heix": "image/heic",
	"hevc": "image/heic",
	"hevx": "image/heic",
	"heim": "image/heic",
	"heis": "image/heic",
	"mif1": "image/heif",
	"msf1": "image/heif",
}

func isImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

func receiptContentType(form *CheckoutForm) string {
	if form.ReceiptContentType != "" {
		return form.ReceiptContentType
	}
	return sniffReceiptType(form.Receipt)
}

// sniffReceiptType extends http.DetectContentType with HEIC/HEIF, which
// starts with an "ftyp" box: 4 size bytes, "ftyp", then the major brand.
func sniffReceiptType(data []byte) string {
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		if mime, ok := heifBrands[string(data[8:12])]; ok {
			return mime
		}
	}
	return http.DetectContentType(data)
}
