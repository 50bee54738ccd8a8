package service

import (
	"fmt"
	"strings"
	"time"
)

// RenderedMessage is a receipt rendered for both delivery channels.
type RenderedMessage struct {
	Subject string
	HTML    string
	SMS     string
}

func formatReceiptDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// RenderReceipt turns committed payment state into the confirmation message.
// Pure function: same data in, same message out.
func RenderReceipt(data ReceiptData) RenderedMessage {
	name := data.Name
	if name == "" {
		name = "Customer"
	}
	cars := strings.Join(data.CarSummaries, ", ")
	if cars == "" {
		cars = "your rental"
	}
	amount := fmt.Sprintf("%s %s", data.Currency, data.Amount.StringFixed(2))
	period := fmt.Sprintf("%s to %s", formatReceiptDate(data.RentalStart), formatReceiptDate(data.RentalEnd))

	var html strings.Builder
	html.WriteString("<h2>Payment Confirmation</h2>")
	html.WriteString(fmt.Sprintf("<p>Dear %s,</p>", name))
	html.WriteString(fmt.Sprintf("<p>Your payment for the %s was successful.</p>", cars))
	html.WriteString(fmt.Sprintf("<p><strong>Transaction Ref:</strong> %s</p>", data.TxRef))
	html.WriteString(fmt.Sprintf("<p><strong>Amount:</strong> %s</p>", amount))
	html.WriteString(fmt.Sprintf("<p><strong>Rental Period:</strong> %s</p>", period))
	html.WriteString("<p>Thank you for choosing us!</p>")

	sms := fmt.Sprintf("Hi %s, your payment for %s was successful.\nRef: %s\nAmount: %s", name, cars, data.TxRef, amount)

	return RenderedMessage{
		Subject: "Rental Payment Confirmation",
		HTML:    html.String(),
		SMS:     sms,
	}
}
