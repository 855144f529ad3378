package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// job is the wire format pushed onto the Redis list.
type job struct {
	JobID      uuid.UUID `json:"job_id"`
	AnalysisID uuid.UUID `json:"analysis_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Redis is a Queue backed by a Redis list. Producers LPUSH, workers BRPOP, so
// jobs are delivered oldest first.
type Redis struct {
	client *redis.Client
	key    string
	log    zerolog.Logger
}

// NewRedis connects to redisURL and verifies the connection before returning.
func NewRedis(ctx context.Context, redisURL, queueName string, log zerolog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Redis{client: client, key: queueName, log: log}, nil
}

func (q *Redis) Enqueue(ctx context.Context, analysisID uuid.UUID) (JobInfo, error) {
	j := job{JobID: uuid.New(), AnalysisID: analysisID, EnqueuedAt: time.Now().UTC()}
	data, err := json.Marshal(j)
	if err != nil {
		return JobInfo{}, fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return JobInfo{}, fmt.Errorf("enqueue job: %w", err)
	}
	q.log.Debug().
		Str("job_id", j.JobID.String()).
		Str("analysis_id", analysisID.String()).
		Msg("job enqueued")
	return JobInfo{ID: j.JobID, Status: "queued"}, nil
}

func (q *Redis) Close() error {
	return q.client.Close()
}

// Worker drains the Redis queue and hands each job to the runner. Intended to
// run in a dedicated process alongside the API.
type Worker struct {
	client *redis.Client
	key    string
	runner Runner
	log    zerolog.Logger
}

func NewWorker(q *Redis, runner Runner) *Worker {
	return &Worker{client: q.client, key: q.key, runner: runner, log: q.log}
}

// Start blocks until ctx is cancelled, popping jobs one at a time. A malformed
// payload is logged and dropped; it cannot be retried into anything useful.
func (w *Worker) Start(ctx context.Context) error {
	w.log.Info().Str("queue", w.key).Msg("worker started")
	for {
		res, err := w.client.BRPop(ctx, 5*time.Second, w.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				w.log.Info().Msg("worker stopped")
				return nil
			}
			w.log.Error().Err(err).Msg("pop job")
			time.Sleep(time.Second)
			continue
		}
		// BRPop returns [key, value].
		if len(res) != 2 {
			continue
		}
		var j job
		if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
			w.log.Error().Err(err).Str("raw", res[1]).Msg("malformed job payload")
			continue
		}
		w.runner.Run(ctx, j.AnalysisID)
	}
}
