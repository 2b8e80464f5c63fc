package model

import (
	"homestay/shared/model"
	"time"
)

const (
	TableName  = "outbox_events"
	EntityName = "outbox event"

	FieldID            = "id"
	FieldStatus        = "status"
	FieldAttempts      = "attempts"
	FieldNextAttemptAt = "next_attempt_at"
	FieldLastError     = "last_error"
	FieldSentAt        = "sent_at"
)

const (
	StatusPending = "PENDING"
	StatusSent    = "SENT"
	StatusFailed  = "FAILED"
)

type Event struct {
	ID            string     `db:"id"`
	AggregateType string     `db:"aggregate_type"`
	AggregateID   string     `db:"aggregate_id"`
	EventType     string     `db:"event_type"`
	Channel       string     `db:"channel"`
	Payload       string     `db:"payload"`
	Status        string     `db:"status"`
	Attempts      int        `db:"attempts"`
	NextAttemptAt time.Time  `db:"next_attempt_at"`
	LastError     *string    `db:"last_error"`
	SentAt        *time.Time `db:"sent_at"`
	model.Metadata
}
