// Package notify defines the outbound notification contract. The ledger
// only produces events; delivery belongs to an external collaborator. A
// failed delivery is logged by the sink and never propagates back to fail a
// committed ledger operation.
package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/knassar/mc-wallet-ledger/internal/logger"
)

// Event types understood by downstream clients.
const (
	// TypeDebit informs a user their wallet was debited.
	TypeDebit = "debit"
	// TypeCredit informs a user their wallet was credited.
	TypeCredit = "credit"
	// TypeExchange summarizes a completed currency exchange.
	TypeExchange = "exchange"
	// TypeBalanceRefresh additionally signals the client to drop any cached
	// balances and refetch.
	TypeBalanceRefresh = "balance_refresh"
)

// Event is one "please notify user X" message.
type Event struct {
	UserID uuid.UUID `json:"user_id"`
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
}

// Notifier accepts fire-and-forget notification events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// MessageWriter is the subset of kafka.Writer the kafka notifier needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier publishes events to a Kafka topic keyed by user id.
type KafkaNotifier struct {
	writer MessageWriter
}

func NewKafkaNotifier(writer MessageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

// Notify publishes one event.
func (n *KafkaNotifier) Notify(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID.String()),
		Value: data,
	})
}

// LogNotifier writes events to the logger. Useful when no broker is
// configured and in tests.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify writes the event to the structured logger.
func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	logger.Log.Infow("notification",
		"user_id", event.UserID,
		"type", event.Type,
		"title", event.Title,
		"body", event.Body,
	)
	return nil
}
