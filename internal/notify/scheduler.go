package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/mlorenc/go-shop-api/internal/kafka"
	"github.com/mlorenc/go-shop-api/internal/shop"
)

// ReminderLead is how long before the payment due date the reminder goes out.
const ReminderLead = 24 * time.Hour

// Config is passed in at construction; there is no process-wide mail state.
type Config struct {
	From string
}

// Producer is the slice of the kafka producer the scheduler needs.
type Producer interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// EmailScheduler builds confirmation and reminder jobs and hands them to the
// dispatch worker via the email topic. Scheduling is best-effort: render or
// enqueue problems are logged and swallowed, order creation never fails on
// them.
type EmailScheduler struct {
	Cfg      Config
	Producer Producer
	Now      func() time.Time
	Log      zerolog.Logger
}

func (s *EmailScheduler) ScheduleConfirmation(ctx context.Context, o shop.Order, u shop.User) {
	subject, text, html, err := renderConfirmation(o, u)
	if err != nil {
		s.Log.Error().Err(err).Str("order_id", o.ID).Msg("render confirmation email")
		return
	}
	s.enqueue(EmailJob{
		Kind:    KindConfirmation,
		OrderID: o.ID,
		Subject: subject,
		Text:    text,
		HTML:    html,
		To:      []string{u.Email},
	})
}

// ScheduleReminder enqueues the reminder with not-before = due date minus the
// lead time. A not-before already in the past is enqueued unchanged; the
// worker sends such jobs immediately.
func (s *EmailScheduler) ScheduleReminder(ctx context.Context, o shop.Order, u shop.User) {
	subject, text, html, err := renderReminder(o, u)
	if err != nil {
		s.Log.Error().Err(err).Str("order_id", o.ID).Msg("render reminder email")
		return
	}
	s.enqueue(EmailJob{
		Kind:      KindReminder,
		OrderID:   o.ID,
		Subject:   subject,
		Text:      text,
		HTML:      html,
		To:        []string{u.Email},
		NotBefore: o.PaymentDueDate.Add(-ReminderLead),
	})
}

func (s *EmailScheduler) enqueue(job EmailJob) {
	job.JobID = uuid.NewString()
	job.From = s.Cfg.From
	job.EnqueuedAt = s.now()

	s.Producer.Publish(PartitionKey(job.OrderID), kafkax.MustMarshal(job),
		kafkago.Header{Key: "x-job-kind", Value: []byte(job.Kind)},
	)
	s.Log.Debug().
		Str("job_id", job.JobID).
		Str("kind", string(job.Kind)).
		Str("order_id", job.OrderID).
		Time("not_before", job.NotBefore).
		Msg("email job enqueued")
}

func (s *EmailScheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
