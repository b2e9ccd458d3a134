package notify

import "time"

const TopicEmailSend = "shop.email.send"

type JobKind string

const (
	KindConfirmation JobKind = "order.confirmation"
	KindReminder     JobKind = "payment.reminder"
)

// EmailJob is the wire envelope handed to the dispatch worker. A zero
// NotBefore means send immediately; otherwise the worker holds the job until
// that time. Jobs are never deduplicated: every enqueue is an independent
// send.
type EmailJob struct {
	JobID      string    `json:"job_id"`
	Kind       JobKind   `json:"kind"`
	OrderID    string    `json:"order_id"`
	Subject    string    `json:"subject"`
	Text       string    `json:"text"`
	HTML       string    `json:"html"`
	From       string    `json:"from"`
	To         []string  `json:"to"`
	NotBefore  time.Time `json:"not_before"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Partition key = order_id so both jobs for one order land on one partition.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
