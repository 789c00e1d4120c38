package kafka

import (
	"encoding/json"
	"time"
)

// OutboxRecord is the schema of outbox_events, used only for migrations.
// Reads and writes go through OutboxRepository.
type OutboxRecord struct {
	ID            string     `gorm:"type:uuid;primaryKey"`
	RequestID     string     `gorm:"type:varchar(64)"`
	AggregateType string     `gorm:"type:varchar(50);not null"`
	AggregateID   string     `gorm:"type:uuid;not null"`
	EventType     string     `gorm:"type:varchar(100);not null"`
	Topic         string     `gorm:"type:varchar(150);not null"`
	Payload       []byte     `gorm:"type:jsonb;not null"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_outbox_status_created,priority:1"`
	RetryCount    int        `gorm:"not null;default:0"`
	NextRetryAt   *time.Time
	ErrorMessage  *string `gorm:"type:varchar(500)"`
	ProcessedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null;index:idx_outbox_status_created,priority:2"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (OutboxRecord) TableName() string { return "outbox_events" }

// NewPendingEvent marshals payload into a pending outbox row.
func NewPendingEvent(id, requestID, aggregateType, aggregateID, eventType, topic string, payload any) (OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, err
	}

	event := OutboxEvent{
		ID:            id,
		RequestID:     requestID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       body,
		Status:        OutboxStatusPending,
	}
	if err := ValidateOutboxEvent(event); err != nil {
		return OutboxEvent{}, err
	}
	return event, nil
}
