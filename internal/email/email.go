// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
	"time"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
	BaseURL  string // frontend base URL for links
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
}

// NewService creates a new email service
func NewService(config *Config) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {
	// Application received — sent to the project creator
	s.templates["application_received"] = template.Must(template.New("application_received").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #4f46e5; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .card { background: white; border-radius: 8px; padding: 20px; margin: 16px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .btn { display: inline-block; background: #4f46e5; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>New Application to {{.ProjectTitle}}</h2>
    </div>
    <div class="content">
        <p>Hello {{.CreatorName}},</p>
        <p><strong>{{.ApplicantName}}</strong> wants to join your project <strong>{{.ProjectTitle}}</strong>.</p>
        {{if .Message}}
        <div class="card">
            <p style="margin: 0;">{{.Message}}</p>
        </div>
        {{end}}
        <a href="{{.ReviewURL}}" class="btn">Review Application</a>
    </div>
    <div class="footer">
        CoFoundry • Find Your Co-founder
    </div>
</div>
</body>
</html>
`))

	// Invitation received — sent to the invitee
	s.templates["invitation_received"] = template.Must(template.New("invitation_received").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #10b981; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .card { background: white; border-radius: 8px; padding: 20px; margin: 16px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .btn { display: inline-block; background: #10b981; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>You're Invited to Join {{.ProjectTitle}}</h2>
    </div>
    <div class="content">
        <p>Hello {{.InviteeName}},</p>
        <p><strong>{{.InviterName}}</strong> invited you to join <strong>{{.ProjectTitle}}</strong>.</p>
        {{if .Message}}
        <div class="card">
            <p style="margin: 0;">{{.Message}}</p>
        </div>
        {{end}}
        <a href="{{.InviteURL}}" class="btn">View Invitation</a>
        <p style="margin-top: 16px; font-size: 14px; color: #6b7280;">
            If you were not expecting this email, you can ignore it.
        </p>
    </div>
    <div class="footer">
        CoFoundry • Find Your Co-founder
    </div>
</div>
</body>
</html>
`))

	// Application resolved — sent to the applicant
	s.templates["application_resolved"] = template.Must(template.New("application_resolved").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #4f46e5; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #4f46e5; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Application Update</h2>
    </div>
    <div class="content">
        <p>Hello {{.ApplicantName}},</p>
        {{if .Accepted}}
        <p>Your application to <strong>{{.ProjectTitle}}</strong> was accepted. Welcome aboard!</p>
        {{else}}
        <p>Your application to <strong>{{.ProjectTitle}}</strong> was not accepted this time.</p>
        {{end}}
        {{if .Response}}
        <p>Message from the project creator:</p>
        <p style="font-style: italic;">{{.Response}}</p>
        {{end}}
        <a href="{{.ProjectURL}}" class="btn">View Project</a>
    </div>
    <div class="footer">
        CoFoundry • Find Your Co-founder
    </div>
</div>
</body>
</html>
`))
}

// Send sends an email
func (s *Service) Send(email *Email) error {
	if s.config.Host == "" {
		log.Println("Email not configured, skipping send")
		return nil
	}

	var msg bytes.Buffer

	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.Body)
	}

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("TLS dial error: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			return fmt.Errorf("SMTP client error: %w", err)
		}
		defer client.Close()

		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("auth error: %w", err)
		}

		if err = client.Mail(s.config.From); err != nil {
			return fmt.Errorf("mail error: %w", err)
		}

		for _, rcpt := range email.To {
			if err = client.Rcpt(rcpt); err != nil {
				return fmt.Errorf("rcpt error: %w", err)
			}
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("data error: %w", err)
		}

		if _, err = w.Write(msg.Bytes()); err != nil {
			return fmt.Errorf("write error: %w", err)
		}

		if err = w.Close(); err != nil {
			return fmt.Errorf("close error: %w", err)
		}

		return client.Quit()
	}

	return smtp.SendMail(addr, auth, s.config.From, email.To, msg.Bytes())
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	return s.Send(&Email{
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
	})
}

// ============================================
// Convenience Methods
// ============================================

// ApplicationReceivedData holds data for the application-received email
type ApplicationReceivedData struct {
	CreatorName   string
	ApplicantName string
	ProjectTitle  string
	Message       string
	ReviewURL     string
}

// SendApplicationReceived emails a project creator about a new application
func (s *Service) SendApplicationReceived(to string, data ApplicationReceivedData) error {
	if data.ReviewURL == "" {
		data.ReviewURL = fmt.Sprintf("%s/my-applications", s.config.BaseURL)
	}
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("[CoFoundry] New application to %s", data.ProjectTitle),
		"application_received",
		data,
	)
}

// InvitationReceivedData holds data for the invitation email
type InvitationReceivedData struct {
	InviteeName  string
	InviterName  string
	ProjectTitle string
	Message      string
	InviteURL    string
}

// SendInvitationReceived emails a user about a project invitation
func (s *Service) SendInvitationReceived(to string, data InvitationReceivedData) error {
	if data.InviterName == "" {
		data.InviterName = "Someone"
	}
	if data.InviteURL == "" {
		data.InviteURL = fmt.Sprintf("%s/my-invitations", s.config.BaseURL)
	}
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("[CoFoundry] Invitation to join %s", data.ProjectTitle),
		"invitation_received",
		data,
	)
}

// ApplicationResolvedData holds data for the application-resolved email
type ApplicationResolvedData struct {
	ApplicantName string
	ProjectTitle  string
	Accepted      bool
	Response      string
	ProjectURL    string
}

// SendApplicationResolved emails an applicant about the creator's decision
func (s *Service) SendApplicationResolved(to string, data ApplicationResolvedData) error {
	subject := fmt.Sprintf("[CoFoundry] Update on your application to %s", data.ProjectTitle)
	return s.SendWithTemplate([]string{to}, subject, "application_resolved", data)
}

// ============================================
// Async Queue
// ============================================

const maxSendRetries = 3

// EmailQueue sends emails asynchronously with retries. SMTP round trips are
// slow and unreliable enough that request handlers never wait on them.
type EmailQueue struct {
	service    *Service
	queue      chan *queuedEmail
	done       chan bool
	retryDelay time.Duration
}

type queuedEmail struct {
	send    func() error
	retries int
}

// NewEmailQueue creates a new email queue
func NewEmailQueue(service *Service, workers int) *EmailQueue {
	q := &EmailQueue{
		service:    service,
		queue:      make(chan *queuedEmail, 1000),
		done:       make(chan bool),
		retryDelay: 2 * time.Second,
	}

	for i := 0; i < workers; i++ {
		go q.worker()
	}

	return q
}

func (q *EmailQueue) worker() {
	for {
		select {
		case email := <-q.queue:
			if err := email.send(); err != nil {
				log.Printf("Email send error: %v", err)
				if email.retries < maxSendRetries {
					email.retries++
					time.Sleep(q.retryDelay * time.Duration(email.retries))
					q.queue <- email
				} else {
					log.Printf("Email dropped after %d retries", maxSendRetries)
				}
			}
		case <-q.done:
			return
		}
	}
}

func (q *EmailQueue) enqueue(send func() error) {
	q.queue <- &queuedEmail{send: send}
}

// Enqueue adds a raw templated email to the queue
func (q *EmailQueue) Enqueue(to []string, subject, templateName string, data interface{}) {
	q.enqueue(func() error {
		return q.service.SendWithTemplate(to, subject, templateName, data)
	})
}

// QueueApplicationReceived queues the application-received email to a creator
func (q *EmailQueue) QueueApplicationReceived(to string, data ApplicationReceivedData) {
	q.enqueue(func() error {
		return q.service.SendApplicationReceived(to, data)
	})
}

// QueueInvitationReceived queues the invitation email to an invitee
func (q *EmailQueue) QueueInvitationReceived(to string, data InvitationReceivedData) {
	q.enqueue(func() error {
		return q.service.SendInvitationReceived(to, data)
	})
}

// QueueApplicationResolved queues the decision email to an applicant
func (q *EmailQueue) QueueApplicationResolved(to string, data ApplicationResolvedData) {
	q.enqueue(func() error {
		return q.service.SendApplicationResolved(to, data)
	})
}

// Stop stops the email queue workers
func (q *EmailQueue) Stop() {
	close(q.done)
}
