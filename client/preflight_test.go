package client

import (
	"bytes"
	"testing"
	"time"

	"github.com/CharlesX20/chimestradingstore/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func validForm() *CheckoutForm {
	return &CheckoutForm{
		BuyerName:      "Ada",
		BuyerPhone:     "+234 801 234 5678",
		PickupDatetime: "2026-05-12T14:30",
		Items: []models.CheckoutItem{
			{ID: "p1", Name: "Rice", Price: 5000, Quantity: 2},
		},
		Total:   10000,
		Receipt: pngHeader,
	}
}

func preflightNow() time.Time {
	return time.Date(2026, 5, 12, 10, 0, 0, 0, time.UTC)
}

func TestPreflight_AcceptsValidForm(t *testing.T) {
	assert.NoError(t, Preflight(validForm(), preflightNow(), time.UTC))
}

func TestPreflight_RejectsFields(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(f *CheckoutForm)
		field string
	}{
		{"blank name", func(f *CheckoutForm) { f.BuyerName = "   " }, "BuyerName"},
		{"short phone", func(f *CheckoutForm) { f.BuyerPhone = "12345" }, "BuyerPhone"},
		{"letters in phone", func(f *CheckoutForm) { f.BuyerPhone = "call me maybe" }, "BuyerPhone"},
		{"missing pickup", func(f *CheckoutForm) { f.PickupDatetime = "" }, "PickupDatetime"},
		{"unparseable pickup", func(f *CheckoutForm) { f.PickupDatetime = "tomorrow noon" }, "PickupDatetime"},
		{"pickup in the past", func(f *CheckoutForm) { f.PickupDatetime = "2026-05-12T09:50" }, "PickupDatetime"},
		{"empty cart", func(f *CheckoutForm) { f.Items = []models.CheckoutItem{} }, "Items"},
		{"no receipt", func(f *CheckoutForm) { f.Receipt = nil }, "Receipt"},
		{"receipt too large", func(f *CheckoutForm) { f.Receipt = append(pngHeader, bytes.Repeat([]byte{0}, MaxReceiptBytes)...) }, "Receipt"},
		{"receipt not an image", func(f *CheckoutForm) { f.Receipt = []byte("plain text, not a picture") }, "Receipt"},
		{"declared pdf", func(f *CheckoutForm) { f.ReceiptContentType = "application/pdf" }, "Receipt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.edit(form)

			err := Preflight(form, preflightNow(), time.UTC)
			require.Error(t, err)
			var perr *PreflightError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.field, perr.Field)
			assert.NotEmpty(t, perr.Message)
		})
	}
}

func TestPreflight_PickupWithinGrace(t *testing.T) {
	form := validForm()
	form.PickupDatetime = "2026-05-12T09:57"

	assert.NoError(t, Preflight(form, preflightNow(), time.UTC))
}

func TestPreflight_PickupReadInStoreZone(t *testing.T) {
	lagos := time.FixedZone("WAT", 3600)
	form := validForm()
	// 10:30 in Lagos is 09:30 UTC, half an hour before now.
	form.PickupDatetime = "2026-05-12T10:30"

	err := Preflight(form, preflightNow(), lagos)
	var perr *PreflightError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "PickupDatetime", perr.Field)
}

func TestPreflight_AcceptsPhonePhotoFormats(t *testing.T) {
	heic := append([]byte("\x00\x00\x00\x18ftypheic"), bytes.Repeat([]byte{0}, 16)...)
	heif := append([]byte("\x00\x00\x00\x18ftypmif1"), bytes.Repeat([]byte{0}, 16)...)

	tests := []struct {
		name        string
		receipt     []byte
		contentType string
		want        string
	}{
		{"sniffed heic", heic, "", "image/heic"},
		{"sniffed heif", heif, "", "image/heif"},
		{"declared heic", []byte("opaque bytes"), "image/heic", "image/heic"},
		{"sniffed png", pngHeader, "", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			form.Receipt = tt.receipt
			form.ReceiptContentType = tt.contentType

			assert.NoError(t, Preflight(form, preflightNow(), time.UTC))
			assert.Equal(t, tt.want, receiptContentType(form))
		})
	}
}
