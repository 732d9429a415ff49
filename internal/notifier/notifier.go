package notifier

import (
	"context"
	"log"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type Message struct {
	Channel   string
	Recipient string
	Subject   string
	Body      string
}

// Notifier delivers a rendered notification. Swapping in SMTP/SMS providers
// means implementing this interface.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// ConsoleNotifier logs deliveries instead of sending them.
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Send(_ context.Context, msg Message) error {
	log.Printf("[Notify] %s -> %s :: %s", msg.Channel, msg.Recipient, msg.Subject)
	log.Printf("[Notify] %s", msg.Body)
	return nil
}
