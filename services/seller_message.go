package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/CharlesX20/chimestradingstore/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const pickupLayout = "Mon, 02 Jan 2006 3:04 PM"

var amountPrinter = message.NewPrinter(language.English)

// FormatNaira renders an amount as "₦12,500" or "₦12,500.5".
func FormatNaira(amount float64) string {
	return amountPrinter.Sprintf("₦%v", number.Decimal(amount, number.MaxFractionDigits(2)))
}

// SellerMessage is the text the seller receives on WhatsApp for a new order.
func SellerMessage(orderID, buyerName, buyerPhone string, pickup time.Time, items []models.OrderItem, total float64, receiptURL string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	fmt.Fprintf(&b, "New Order: #%s\n", orderID)
	fmt.Fprintf(&b, "Buyer: %s\n", buyerName)
	fmt.Fprintf(&b, "Phone: %s\n", buyerPhone)
	fmt.Fprintf(&b, "Pickup: %s\n", pickup.In(loc).Format(pickupLayout))
	b.WriteString("\nItems:\n")
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s — %s (qty: %d)\n", i+1, it.Name, FormatNaira(it.LineTotal()), it.Quantity)
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", FormatNaira(total))
	fmt.Fprintf(&b, "Receipt: %s", receiptURL)
	return b.String()
}

// OrderSellerMessage builds SellerMessage from a persisted order.
func OrderSellerMessage(o *models.Order, loc *time.Location) string {
	return SellerMessage(o.ID.Hex(), o.BuyerName, o.BuyerPhone, o.PickupDatetime, o.Items, o.Total, o.ReceiptURL, loc)
}

// WhatsAppLink builds a wa.me click-to-chat link with text prefilled.
func WhatsAppLink(phone, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
