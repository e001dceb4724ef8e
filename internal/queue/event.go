// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// ReservationQueueName is the durable queue (and Kafka topic default)
// carrying reservation events.
const ReservationQueueName = "reservation.status_changed"

// ReservationEvent is published after a reservation assignment or status
// transition has been committed.  It carries enough context for downstream
// consumers to log or audit the change without querying the database.
type ReservationEvent struct {
	EventID       string `json:"event_id"`
	Kind          string `json:"kind"` // created, assigned or transition
	TenantID      uint64 `json:"tenant_id"`
	ReservationID uint64 `json:"reservation_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	TableID       uint64 `json:"table_id,omitempty"`
	TableNumber   int    `json:"table_number,omitempty"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PartySize     int    `json:"party_size"`
	OccurredAt    string `json:"occurred_at"`
}
