package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/eskro/backend/internal/config"
)

// Sender is the outbound email capability the auth and content flows
// consume. Failures never roll back the state change that triggered the
// mail, callers log and move on.
type Sender interface {
	SendRegistrationConfirmation(email, username, token string) error
	SendRegisterInvitation(email, token string) error
	SendPasswordChange(email, token string) error
	SendSubscriptionConfirmation(email, token string) error
	SendFeedbackResponse(email, firstName, response string) error
}

type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	frontend config.FrontendConfig
	tpl      *template.Template
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:     cfg.MailFrom,
		fromName: cfg.MailFromName,
		frontend: cfg.Frontend,
		tpl:      template.Must(template.New("mail").Parse(templates)),
	}
}

func (m *Mailer) SendRegistrationConfirmation(email, username, token string) error {
	return m.send(email, "Подтверждение регистрации", "confirm_registration", map[string]string{
		"Username": username,
		"URL":      fmt.Sprintf("%s/?token=%s", m.frontend.ConfirmRegistrationURL, token),
	})
}

func (m *Mailer) SendRegisterInvitation(email, token string) error {
	return m.send(email, "Приглашение на регистрацию", "register_invitation", map[string]string{
		"URL": fmt.Sprintf("%s/?token=%s", m.frontend.RegisterInvitationURL, token),
	})
}

func (m *Mailer) SendPasswordChange(email, token string) error {
	return m.send(email, "Изменение пароля", "changing_password", map[string]string{
		"URL": fmt.Sprintf("%s/?token=%s", m.frontend.ChangingPasswordURL, token),
	})
}

func (m *Mailer) SendSubscriptionConfirmation(email, token string) error {
	return m.send(email, "Подтверждение подписки", "confirm_subscription", map[string]string{
		"URL": fmt.Sprintf("%s/?token=%s", m.frontend.ConfirmSubscriptionURL, token),
	})
}

func (m *Mailer) SendFeedbackResponse(email, firstName, response string) error {
	return m.send(email, "Ответ на ваше обращение", "feedback_response", map[string]string{
		"FirstName": firstName,
		"Response":  response,
	})
}

func (m *Mailer) send(to, subject, name string, data map[string]string) error {
	var body bytes.Buffer
	if err := m.tpl.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send %s to %s: %w", name, to, err)
	}
	return nil
}
