package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/application/ports"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var (
	_ ports.Notifier = (*Notifier)(nil)
	_ ports.Notifier = (*LogNotifier)(nil)
)

// MessageWriter lo que Notifier usa de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter writer con balanceo por hash de la llave (mismo pedido, misma partición).
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
}

// notificationMessage cuerpo que consume el servicio de correo.
type notificationMessage struct {
	Type         string    `json:"type"`
	OrderID      int64     `json:"order_id"`
	Email        string    `json:"email"`
	CustomerName string    `json:"customer_name,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

// Notifier publica las confirmaciones de pedido en un topic de Kafka.
type Notifier struct {
	writer MessageWriter
	log    zerolog.Logger
}

// NewNotifier construye el adaptador sobre writer.
func NewNotifier(writer MessageWriter, log zerolog.Logger) *Notifier {
	return &Notifier{writer: writer, log: log.With().Str("component", "kafka_notifier").Logger()}
}

// SendOrderConfirmation escribe el mensaje con el contexto de traza en los headers.
func (n *Notifier) SendOrderConfirmation(ctx context.Context, msg ports.OrderConfirmation) error {
	body, err := json.Marshal(notificationMessage{
		Type:         "ORDER_CONFIRMED",
		OrderID:      msg.OrderID,
		Email:        msg.Email,
		CustomerName: msg.CustomerName,
		SentAt:       time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := make([]kafka.Header, 0, len(carrier))
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(strconv.FormatInt(msg.OrderID, 10)),
		Value:   body,
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("kafka write notification: %w", err)
	}
	n.log.Debug().Int64("order_id", msg.OrderID).Msg("confirmación de pedido publicada")
	return nil
}

// Close cierra el writer subyacente.
func (n *Notifier) Close() error {
	return n.writer.Close()
}

// LogNotifier notificador de desarrollo: sin brokers configurados solo escribe en el log.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "log_notifier").Logger()}
}

func (n *LogNotifier) SendOrderConfirmation(_ context.Context, msg ports.OrderConfirmation) error {
	n.log.Info().
		Int64("order_id", msg.OrderID).
		Str("email", msg.Email).
		Msg("confirmación de pedido (sin kafka configurado)")
	return nil
}
