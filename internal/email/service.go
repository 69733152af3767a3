package email

import (
	"fmt"
	"net/smtp"

	"github.com/shopspring/decimal"
)

// Service sends transactional mail over plain SMTP. Local development
// points it at a mailcatcher; there is no auth because the relay sits on
// the private network.
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation mails the receipt for one placed order.
func (s *Service) SendOrderConfirmation(to, orderID string, total decimal.Decimal, items []OrderItem) error {
	subject := fmt.Sprintf("Order confirmed — %s", shortID(orderID))
	body := BuildOrderConfirmationBody(orderID, total, items)
	return s.send(to, subject, body)
}

// SendPaymentConfirmed mails the delivery code once payment settles. The
// customer hands the code to the courier on delivery.
func (s *Service) SendPaymentConfirmed(to, orderID, deliveryCode string) error {
	subject := fmt.Sprintf("Payment received — %s", shortID(orderID))
	body := BuildPaymentConfirmedBody(orderID, deliveryCode)
	return s.send(to, subject, body)
}

func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
