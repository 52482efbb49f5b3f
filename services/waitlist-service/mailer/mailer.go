package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"os"

	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/models"
)

// Mailer renders the branded HTML emails and sends them over SMTP.
type Mailer struct {
	host     string
	port     string
	username string
	password string

	waitlistTmpl *template.Template
	invoiceTmpl  *template.Template
}

const waitlistTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Georgia, serif; background: #faf7f2; padding: 24px;">
  <div style="max-width: 480px; margin: auto; background: #fff; padding: 32px; border: 1px solid #e8e1d5;">
    <h1 style="color: #b08d57; letter-spacing: 2px;">AURELIA</h1>
    <p>You're on the list.</p>
    <p>Your access passcode:</p>
    <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Passcode}}</p>
    {{if .MagicLink}}<p><a href="{{.MagicLink}}" style="color: #b08d57;">Or enter directly</a></p>{{end}}
    <p style="color: #999; font-size: 12px;">If you didn't request this, you can ignore this email.</p>
  </div>
</body>
</html>`

const invoiceTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Georgia, serif; background: #faf7f2; padding: 24px;">
  <div style="max-width: 560px; margin: auto; background: #fff; padding: 32px; border: 1px solid #e8e1d5;">
    <h1 style="color: #b08d57; letter-spacing: 2px;">{{.Sender.Name}}</h1>
    <p>Thank you for your order <strong>{{.Invoice.OrderID}}</strong>.</p>
    <table style="width: 100%; border-collapse: collapse;">
      <tr style="border-bottom: 1px solid #e8e1d5;">
        <th align="left">Item</th><th align="right">Qty</th><th align="right">Total</th>
      </tr>
      {{range .Invoice.Items}}
      <tr>
        <td>{{.Name}}{{if .Variant}} ({{.Variant}}){{end}}</td>
        <td align="right">{{.Quantity}}</td>
        <td align="right">{{centsToDollars .TotalCents}}</td>
      </tr>
      {{end}}
    </table>
    <p align="right" style="font-size: 18px;"><strong>Total: {{centsToDollars .Invoice.TotalCents}}</strong></p>
  </div>
</body>
</html>`

func centsToDollars(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func New() (*Mailer, error) {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	username := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASS")

	if host == "" || port == "" || username == "" || password == "" {
		return nil, fmt.Errorf("SMTP configuration incomplete")
	}

	funcs := template.FuncMap{"centsToDollars": centsToDollars}
	waitlistTmpl, err := template.New("waitlist").Funcs(funcs).Parse(waitlistTemplate)
	if err != nil {
		return nil, fmt.Errorf("waitlist template: %w", err)
	}
	invoiceTmpl, err := template.New("invoice").Funcs(funcs).Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("invoice template: %w", err)
	}

	return &Mailer{
		host:         host,
		port:         port,
		username:     username,
		password:     password,
		waitlistTmpl: waitlistTmpl,
		invoiceTmpl:  invoiceTmpl,
	}, nil
}

// SendWaitlistEmail delivers the passcode email to a new signup.
func (m *Mailer) SendWaitlistEmail(ctx context.Context, to, passcode, magicLink string) error {
	var buf bytes.Buffer
	err := m.waitlistTmpl.Execute(&buf, struct {
		Passcode  string
		MagicLink string
	}{passcode, magicLink})
	if err != nil {
		return fmt.Errorf("render waitlist email: %w", err)
	}
	return m.send(to, "Your Aurelia access passcode", buf.String())
}

// SendInvoiceEmail delivers the order invoice.
func (m *Mailer) SendInvoiceEmail(ctx context.Context, to string, invoice models.Invoice, senderInfo models.SenderInfo) error {
	if senderInfo.Name == "" {
		senderInfo.Name = "AURELIA"
	}
	var buf bytes.Buffer
	err := m.invoiceTmpl.Execute(&buf, struct {
		Invoice models.Invoice
		Sender  models.SenderInfo
	}{invoice, senderInfo})
	if err != nil {
		return fmt.Errorf("render invoice email: %w", err)
	}
	subject := fmt.Sprintf("Your order %s", invoice.OrderID)
	return m.send(to, subject, buf.String())
}

func (m *Mailer) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	msg := []byte(
		"From: " + m.username + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	if err := smtp.SendMail(addr, auth, m.username, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
