package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/raghav0014/AI-Feedback/models"
)

// Mailer sends application emails over SMTP.
type Mailer struct {
	host string
	port int
	user string
	pass string
}

func NewMailer(host string, port int, user, pass string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass}
}

// Configured reports whether SMTP settings are present.
func (m *Mailer) Configured() bool {
	return m.host != "" && m.user != ""
}

func (m *Mailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}

// SendModerationEmail tells the author about a moderation decision.
func (m *Mailer) SendModerationEmail(to, name string, review *models.Review) error {
	subject := fmt.Sprintf("Your review of %s was %s", review.ProductName, review.Status)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your review has been moderated.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Product:</strong> %s</li>
			<li><strong>Title:</strong> %s</li>
			<li><strong>Status:</strong> %s</li>
			<li><strong>Notes:</strong> %s</li>
		</ul>
		<p>Best regards,</p>
		<p>The Review Team</p>
	`, name, review.ProductName, review.Title, review.Status, review.ModerationNotes)

	return m.send(to, subject, body)
}

// SendPendingDigest tells an admin how many reviews await moderation.
func (m *Mailer) SendPendingDigest(to, name string, pending int64) error {
	subject := fmt.Sprintf("%d reviews awaiting moderation", pending)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>There are currently <strong>%d</strong> reviews in the moderation queue.</p>
		<p>Best regards,</p>
		<p>The Review Team</p>
	`, name, pending)

	return m.send(to, subject, body)
}
