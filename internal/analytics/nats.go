package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/bensaadi/parapharma/internal/domain"
)

// SubjectOrderCreated is the subject purchase events are published on.
const SubjectOrderCreated = "parapharma.orders.created"

// NATSNotifier publishes purchase events to a NATS subject.
type NATSNotifier struct {
	conn *nats.Conn
}

var _ Notifier = (*NATSNotifier)(nil)

// NewNATSNotifier connects to the NATS server at url.
func NewNATSNotifier(url string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url, nats.Name("parapharma-analytics"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSNotifier{conn: conn}, nil
}

// NotifyPurchase publishes the event. NATS publish is async at the client;
// the caller already treats any error as non-fatal.
func (n *NATSNotifier) NotifyPurchase(_ context.Context, order *domain.Order, itemCount int) error {
	payload, err := json.Marshal(NewEvent(order, itemCount))
	if err != nil {
		return fmt.Errorf("encode purchase event: %w", err)
	}
	if err := n.conn.Publish(SubjectOrderCreated, payload); err != nil {
		return fmt.Errorf("publish purchase event: %w", err)
	}
	return nil
}

// Close drains and closes the connection.
func (n *NATSNotifier) Close() {
	_ = n.conn.Drain()
}
