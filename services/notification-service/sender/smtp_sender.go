package sender

import (
	"context"
	"fmt"
	"net/smtp"
	"time"
)

// SMTPConfig carries the relay settings plus the identity stock alerts are
// sent as. FromAddress defaults to Username, FromName to the brand default.
type SMTPConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

const defaultFromName = "AURELIA Stock Alerts"

type SMTPSender struct {
	addr     string
	host     string
	username string
	password string
	from     string
	fromHdr  string
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.Port == "" {
		return nil, fmt.Errorf("smtp host and port are required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("smtp credentials are required")
	}

	from := cfg.FromAddress
	if from == "" {
		from = cfg.Username
	}
	fromName := cfg.FromName
	if fromName == "" {
		fromName = defaultFromName
	}

	return &SMTPSender{
		addr:     cfg.Host + ":" + cfg.Port,
		host:     cfg.Host,
		username: cfg.Username,
		password: cfg.Password,
		from:     from,
		fromHdr:  fmt.Sprintf("%s <%s>", fromName, from),
	}, nil
}

func (s *SMTPSender) message(to, subject, body string) []byte {
	return []byte(
		"From: " + s.fromHdr + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)
}

func (s *SMTPSender) SendEmail(ctx context.Context, to, subject, body string) (SendResult, error) {
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	if err := smtp.SendMail(s.addr, auth, s.from, []string{to}, s.message(to, subject, body)); err != nil {
		return SendResult{}, fmt.Errorf("smtp send failed: %w", err)
	}

	return SendResult{
		MessageID: fmt.Sprintf("smtp-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
