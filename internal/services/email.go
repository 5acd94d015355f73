package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/utils"
)

// EmailService sends notification mail over SMTP when configured. Without
// SMTP_HOST it degrades to logging the message, which keeps local
// development free of mail setup.
type EmailService interface {
	Send(to, subject, body string) error
	SendAssessmentSubmitted(to, clientName string) error
	SendCampaignReady(to, clientName string) error
}

type emailService struct {
	log      *logger.Logger
	host     string
	port     string
	username string
	password string
	from     string
}

func NewEmailService(log *logger.Logger) EmailService {
	serviceLog := log.With("service", "EmailService")
	return &emailService{
		log:      serviceLog,
		host:     utils.GetEnv("SMTP_HOST", "", serviceLog),
		port:     utils.GetEnv("SMTP_PORT", "587", serviceLog),
		username: utils.GetEnv("SMTP_USERNAME", "", serviceLog),
		password: utils.GetEnv("SMTP_PASSWORD", "", serviceLog),
		from:     utils.GetEnv("SMTP_FROM", "no-reply@parolegy.com", serviceLog),
	}
}

func (es *emailService) Send(to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient required")
	}
	if es.host == "" {
		es.log.Info("SMTP not configured; logging email instead", "to", to, "subject", subject)
		return nil
	}

	msg := strings.Join([]string{
		"From: " + es.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := es.host + ":" + es.port
	var auth smtp.Auth
	if es.username != "" {
		auth = smtp.PlainAuth("", es.username, es.password, es.host)
	}
	if err := smtp.SendMail(addr, auth, es.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (es *emailService) SendAssessmentSubmitted(to, clientName string) error {
	subject := "Assessment received"
	body := fmt.Sprintf("The assessment for %s has been received. You can now upload supporting documents and generate the campaign.", clientName)
	return es.Send(to, subject, body)
}

func (es *emailService) SendCampaignReady(to, clientName string) error {
	subject := "Campaign ready"
	body := fmt.Sprintf("The parole campaign for %s is ready. Sign in to review and download the PDF.", clientName)
	return es.Send(to, subject, body)
}
