package mailer

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/mlorenc/go-shop-api/internal/kafka"
	"github.com/mlorenc/go-shop-api/internal/notify"
	"github.com/mlorenc/go-shop-api/internal/redisx"
)

// PollInterval is how often parked jobs are checked for becoming due.
const PollInterval = 30 * time.Second

// DelayQueue is the slice of redis the worker needs for parking jobs.
// *redis.Client satisfies it.
type DelayQueue interface {
	ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRangeByScoreWithScores(ctx context.Context, key string, opt *redis.ZRangeBy) *redis.ZSliceCmd
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
}

// Service consumes email jobs from the email topic. Jobs that are already
// due go straight to the sender; jobs with a future not-before time are
// parked in a redis sorted set scored by their due time and picked up by the
// delay loop.
type Service struct {
	Redis  DelayQueue
	Sender Sender
	Now    func() time.Time
	Log    zerolog.Logger
}

// HandleEmailJob is the kafka consumer handler.
func (s *Service) HandleEmailJob(ctx context.Context, m kafkago.Message) error {
	job, err := kafka.Unwrap[notify.EmailJob](m.Value)
	if err != nil {
		// poison message: log, commit, move on
		s.Log.Error().Err(err).Msg("undecodable email job")
		return nil
	}

	if !s.due(job) {
		return s.park(ctx, m.Value, job)
	}
	return s.deliver(ctx, job)
}

// RunDelayLoop polls the parked set until ctx is cancelled.
func (s *Service) RunDelayLoop(ctx context.Context) {
	t := time.NewTicker(PollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.DispatchDue(ctx); err != nil {
				s.Log.Error().Err(err).Msg("dispatch due jobs")
			}
		}
	}
}

// DispatchDue claims and delivers every parked job whose not-before time has
// passed. Claiming via ZRem keeps concurrent workers from double-sending the
// same parked entry; a job whose delivery fails is put back with its original
// score so the next poll retries it.
func (s *Service) DispatchDue(ctx context.Context) error {
	entries, err := s.Redis.ZRangeByScoreWithScores(ctx, redisx.KeyEmailDelayed, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(s.now().Unix(), 10),
	}).Result()
	if err != nil {
		return err
	}

	for _, z := range entries {
		raw, ok := z.Member.(string)
		if !ok {
			continue
		}
		n, err := s.Redis.ZRem(ctx, redisx.KeyEmailDelayed, raw).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			continue // another worker claimed it
		}
		job, err := kafka.Unwrap[notify.EmailJob]([]byte(raw))
		if err != nil {
			s.Log.Error().Err(err).Msg("undecodable parked job")
			continue
		}
		if err := s.deliver(ctx, job); err != nil {
			if aerr := s.Redis.ZAdd(ctx, redisx.KeyEmailDelayed, z).Err(); aerr != nil {
				s.Log.Error().Err(aerr).Str("job_id", job.JobID).Msg("requeue parked job")
			}
			return err
		}
	}
	return nil
}

func (s *Service) park(ctx context.Context, raw []byte, job notify.EmailJob) error {
	err := s.Redis.ZAdd(ctx, redisx.KeyEmailDelayed, redis.Z{
		Score:  float64(job.NotBefore.Unix()),
		Member: string(raw),
	}).Err()
	if err != nil {
		return err
	}
	s.Log.Info().
		Str("job_id", job.JobID).
		Str("kind", string(job.Kind)).
		Time("not_before", job.NotBefore).
		Msg("email job parked")
	return nil
}

func (s *Service) deliver(ctx context.Context, job notify.EmailJob) error {
	if err := s.Sender.Send(ctx, job); err != nil {
		s.Log.Error().Err(err).
			Str("job_id", job.JobID).
			Str("order_id", job.OrderID).
			Msg("email delivery failed")
		return err
	}
	s.Log.Info().
		Str("job_id", job.JobID).
		Str("kind", string(job.Kind)).
		Str("order_id", job.OrderID).
		Msg("email sent")
	return nil
}

func (s *Service) due(job notify.EmailJob) bool {
	return job.NotBefore.IsZero() || !job.NotBefore.After(s.now())
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
