package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/mlorenc/go-shop-api/internal/shop"
)

type emailData struct {
	FirstName       string
	OrderID         string
	DeliveryAddress string
	AggregatePrice  string
	PaymentDueDate  string
}

var confirmationHTML = template.Must(template.New("confirmation").Parse(`<html><body>
<p>Hello {{.FirstName}},</p>
<p>Thank you for your order <strong>{{.OrderID}}</strong>.</p>
<p>Total: <strong>{{.AggregatePrice}}</strong><br>
Delivery address: {{.DeliveryAddress}}<br>
Payment due: {{.PaymentDueDate}}</p>
</body></html>`))

var reminderHTML = template.Must(template.New("reminder").Parse(`<html><body>
<p>Hello {{.FirstName}},</p>
<p>This is a reminder that payment for order <strong>{{.OrderID}}</strong>
of {{.AggregatePrice}} is due on {{.PaymentDueDate}}.</p>
</body></html>`))

func renderConfirmation(o shop.Order, u shop.User) (subject, text, html string, err error) {
	d := templateData(o, u)
	html, err = render(confirmationHTML, d)
	if err != nil {
		return "", "", "", err
	}
	text = fmt.Sprintf(
		"Hello %s,\n\nThank you for your order %s.\nTotal: %s\nDelivery address: %s\nPayment due: %s\n",
		d.FirstName, d.OrderID, d.AggregatePrice, d.DeliveryAddress, d.PaymentDueDate,
	)
	return "Order Confirmation", text, html, nil
}

func renderReminder(o shop.Order, u shop.User) (subject, text, html string, err error) {
	d := templateData(o, u)
	html, err = render(reminderHTML, d)
	if err != nil {
		return "", "", "", err
	}
	text = fmt.Sprintf(
		"Hello %s,\n\nThis is a reminder that payment for order %s of %s is due on %s.\n",
		d.FirstName, d.OrderID, d.AggregatePrice, d.PaymentDueDate,
	)
	return "Payment reminder", text, html, nil
}

func templateData(o shop.Order, u shop.User) emailData {
	return emailData{
		FirstName:       u.FirstName,
		OrderID:         o.ID,
		DeliveryAddress: o.DeliveryAddress,
		AggregatePrice:  o.AggregatePrice.StringFixed(2),
		PaymentDueDate:  o.PaymentDueDate.Format(time.RFC1123),
	}
}

func render(t *template.Template, d emailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
