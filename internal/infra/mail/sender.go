package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/kklick/funnel-api/internal/infra/queue"
)

var notificationTmpl = template.Must(template.New("lead").Parse(`Neuer Lead eingegangen!

Name: {{.Name}}
{{- if .Email}}
E-Mail: {{.Email}}
{{- end}}
{{- if .Phone}}
Telefon: {{.Phone}}
{{- end}}
Quelle: {{.Source}}

---
Automatisch gesendet von deinem Quiz Funnel`))

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
}

func notificationSubject(n queue.LeadNotification) string {
	if n.Repeat {
		return fmt.Sprintf("Lead erneut eingegangen: %s", n.Name)
	}
	return fmt.Sprintf("Neuer Lead: %s", n.Name)
}

func notificationBody(n queue.LeadNotification) (string, error) {
	var body bytes.Buffer
	if err := notificationTmpl.Execute(&body, n); err != nil {
		return "", fmt.Errorf("rendering notification body: %w", err)
	}
	return body.String(), nil
}

// SendLeadNotification mails the plain-text lead summary to the funnel
// owner. Repeat submissions arrive with the source already annotated.
func (s *EmailSender) SendLeadNotification(n queue.LeadNotification) error {
	body, err := notificationBody(n)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", notificationSubject(n))
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("sending notification via SMTP: %w", err)
	}

	return nil
}
