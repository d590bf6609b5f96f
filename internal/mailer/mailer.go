// Package mailer sends the post-reconciliation notification emails. Sends
// are fire-and-forget on a small worker pool; a failed send is logged and
// never propagated back into the webhook flow.
package mailer

import (
	"fmt"
	"strings"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/tamkeenorg/tamkeenpay/config"
	"github.com/tamkeenorg/tamkeenpay/internal/domain"
	"github.com/tamkeenorg/tamkeenpay/internal/payment"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const sendWorkers = 4

type Mailer struct {
	dialer     *gomail.Dialer
	pool       *ants.Pool
	from       string
	fromName   string
	adminEmail string
	enabled    bool
}

var _ payment.Notifier = (*Mailer)(nil)

// New builds a mailer on the configured SMTP relay. An empty adminEmail
// disables admin notifications only; an empty host disables sending
// entirely (useful in development).
func New(cfg config.SmtpConfig, adminEmail string) (*Mailer, error) {
	pool, err := ants.NewPool(sendWorkers)
	if err != nil {
		return nil, err
	}
	m := &Mailer{
		pool:       pool,
		from:       cfg.From,
		fromName:   cfg.FromName,
		adminEmail: adminEmail,
		enabled:    cfg.Host != "",
	}
	if m.enabled {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Passwd)
	}
	return m, nil
}

// Subscribe wires the mailer to the reconciliation topic so the
// orchestrator never depends on it directly.
func (m *Mailer) Subscribe(bus EventBus.Bus) error {
	return bus.Subscribe(payment.TopicPaymentReconciled, func(p *domain.Payment) {
		m.NotifyClient(p)
		m.NotifyAdmin(p)
	})
}

func (m *Mailer) Close() {
	if m.pool != nil {
		m.pool.Release()
	}
}

func (m *Mailer) NotifyClient(p *domain.Payment) {
	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>We would like to thank you for your generous contribution of <strong>%s %s</strong>.</p>
<p>We truly appreciate your support.</p>
<br/>
<p>Best regards,<br/>%s</p>`,
		p.ClientName, p.Total.StringFixed(2), p.Currency, m.fromName)

	m.send(p.ClientEmail, "Thank you for your contribution!", body)
}

func (m *Mailer) NotifyAdmin(p *domain.Payment) {
	if m.adminEmail == "" {
		return
	}
	message := p.Message
	if message == "" {
		message = "-"
	}
	providerID := p.ProviderID
	if providerID == "" {
		providerID = "N/A"
	}
	body := fmt.Sprintf(`<p>A new order has been completed.</p>
<ul>
<li><strong>Name:</strong> %s</li>
<li><strong>Phone:</strong> %s</li>
<li><strong>Email:</strong> %s</li>
<li><strong>Country:</strong> %s</li>
<li><strong>Total:</strong> %s %s</li>
<li><strong>Message:</strong> %s</li>
<li><strong>Contribution Types:</strong> %s</li>
<li><strong>Provider Payment ID:</strong> %s</li>
</ul>`,
		p.ClientName, p.ClientPhone, p.ClientEmail, p.Country,
		p.Total.StringFixed(2), p.Currency, message,
		strings.Join(p.ContributionTypes, ", "), providerID)

	m.send(m.adminEmail, "New Order Received - "+p.ClientName, body)
}

func (m *Mailer) send(to, subject, htmlBody string) {
	if !m.enabled || to == "" {
		return
	}
	err := m.pool.Submit(func() {
		msg := gomail.NewMessage()
		msg.SetAddressHeader("From", m.from, m.fromName)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/html", htmlBody)

		if err := m.dialer.DialAndSend(msg); err != nil {
			zap.L().Error("mail send failed",
				zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		}
	})
	if err != nil {
		zap.L().Warn("mail task rejected", zap.String("to", to), zap.Error(err))
	}
}
