package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vet-practice-api/internal/domain/activity"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrClosed = errors.New("rabbit: publisher closed")

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// Publisher reenvía cada audit log a un exchange topic. Implementa
// activity.Publisher; un fallo acá no afecta la mutación ya confirmada.
type Publisher struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string
}

// auditMessage es el contrato del evento que ven los consumidores.
type auditMessage struct {
	ID             string          `json:"id"`
	VetID          string          `json:"vetId"`
	OrganizationID *string         `json:"organizationId,omitempty"`
	Action         string          `json:"action"`
	EntityType     string          `json:"entityType"`
	EntityID       string          `json:"entityId"`
	Metadata       json.RawMessage `json:"metadata"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func NewPublisher(cfg Config) (*Publisher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbit: url is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbit: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbit: channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbit: declare exchange %q: %w", cfg.Exchange, err)
	}
	return &Publisher{
		conn:       conn,
		ch:         ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
	}, nil
}

func (p *Publisher) PublishAudit(ctx context.Context, e activity.AuditLog) error {
	if p == nil || p.ch == nil || p.ch.IsClosed() {
		return ErrClosed
	}
	msg, err := toPublishing(e)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey(p.routingKey, e), false, false, msg)
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// routingKey agrega la acción como sufijo: audit.entry.client_deleted.
func routingKey(base string, e activity.AuditLog) string {
	action := strings.ToLower(strings.TrimSpace(e.Action))
	if action == "" {
		return base
	}
	return base + "." + action
}

func toPublishing(e activity.AuditLog) (amqp.Publishing, error) {
	meta := e.Metadata
	if len(meta) == 0 {
		meta = json.RawMessage(`{}`)
	}
	body, err := json.Marshal(auditMessage{
		ID:             e.ID,
		VetID:          e.VetID,
		OrganizationID: e.OrganizationID,
		Action:         e.Action,
		EntityType:     e.EntityType,
		EntityID:       e.EntityID,
		Metadata:       meta,
		CreatedAt:      e.CreatedAt.UTC(),
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbit: marshal audit: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    e.ID,
		Type:         e.Action,
		Timestamp:    e.CreatedAt.UTC(),
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}, nil
}
