package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"os"
	"time"
)

// GoogleChatNotifier posts reminder messages to a Google Chat space via
// an incoming webhook. An empty webhook URL turns posting into a no-op.
type GoogleChatNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewGoogleChatNotifier() *GoogleChatNotifier {
	return &GoogleChatNotifier{
		webhookURL: os.Getenv("GOOGLE_CHAT_WEBHOOK_URL"),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *GoogleChatNotifier) Post(text string) error {
	if n.webhookURL == "" {
		return nil
	}
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("chat webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// SMTPMailer sends HTML mail through a plain SMTP relay.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

func (m *SMTPMailer) Configured() bool {
	return m.host != "" && m.from != ""
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	if !m.Configured() {
		return fmt.Errorf("smtp is not configured")
	}
	port := m.port
	if port == "" {
		port = "587"
	}
	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" + htmlBody)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return smtp.SendMail(m.host+":"+port, auth, m.from, []string{to}, msg)
}
