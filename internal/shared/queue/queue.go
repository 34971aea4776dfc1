package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joshuarp/taskguard-api/internal/domain"
)

const defaultPrefix = "taskguard"

var ErrInvalidTask = errors.New("queue: invalid task")

// Publisher is the producer side used by the HTTP layer and the cleanup
// scheduler.
type Publisher interface {
	Enqueue(ctx context.Context, task domain.Task) error
}

// Queue is the full surface the worker consumes.
type Queue interface {
	Publisher
	Schedule(ctx context.Context, task domain.Task, runAt time.Time) error
	PromoteDue(ctx context.Context, now time.Time, limit int64) (int, error)
	Dequeue(ctx context.Context) (domain.Task, bool, error)
	Ack(ctx context.Context, taskID string) error
	DeadLetter(ctx context.Context, task domain.Task, reason string) error
	Depth(ctx context.Context) (Depth, error)
}

type Depth struct {
	Ready        int64 `json:"ready"`
	Scheduled    int64 `json:"scheduled"`
	DeadLettered int64 `json:"dead_lettered"`
}

// DeadLetterRecord is what lands in the dead-letter list.
type DeadLetterRecord struct {
	Task     domain.Task `json:"task"`
	Reason   string      `json:"reason"`
	FailedAt time.Time   `json:"failed_at"`
}

// RedisQueue keeps task payloads in per-task hashes, ready ids in a list and
// deferred ids in a sorted set scored by due time in milliseconds.
type RedisQueue struct {
	client       redis.UniversalClient
	readyKey     string
	scheduledKey string
	dlqKey       string
	taskPrefix   string
	now          func() time.Time
}

var _ Queue = (*RedisQueue)(nil)

func NewRedisQueue(client redis.UniversalClient, prefix string) *RedisQueue {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisQueue{
		client:       client,
		readyKey:     prefix + ":queue:ready",
		scheduledKey: prefix + ":queue:scheduled",
		dlqKey:       prefix + ":queue:dead",
		taskPrefix:   prefix + ":queue:task:",
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (q *RedisQueue) taskKey(id string) string {
	return q.taskPrefix + id
}

func (q *RedisQueue) encode(task domain.Task) ([]byte, error) {
	if strings.TrimSpace(task.ID) == "" || strings.TrimSpace(task.Name) == "" {
		return nil, fmt.Errorf("%w: id and name are required", ErrInvalidTask)
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("queue: failed to encode task %s: %w", task.ID, err)
	}
	return payload, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, task domain.Task) error {
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = q.now()
	}
	payload, err := q.encode(task)
	if err != nil {
		return err
	}

	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, q.taskKey(task.ID), "payload", payload)
	pipe.RPush(ctx, q.readyKey, task.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue: failed to enqueue task %s: %w", task.ID, err)
	}
	return nil
}

// Schedule stores the task as given, so retry counters changed by the caller
// are persisted with it.
func (q *RedisQueue) Schedule(ctx context.Context, task domain.Task, runAt time.Time) error {
	payload, err := q.encode(task)
	if err != nil {
		return err
	}

	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, q.taskKey(task.ID), "payload", payload)
	pipe.ZAdd(ctx, q.scheduledKey, redis.Z{Score: float64(runAt.UnixMilli()), Member: task.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue: failed to schedule task %s: %w", task.ID, err)
	}
	return nil
}

// PromoteDue moves up to limit scheduled tasks whose time has come onto the
// ready list and returns how many moved. The move runs as one script, so
// concurrent callers never push the same id twice.
func (q *RedisQueue) PromoteDue(ctx context.Context, now time.Time, limit int64) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	moved, err := promoteScript.Run(ctx, q.client,
		[]string{q.scheduledKey, q.readyKey},
		strconv.FormatInt(now.UnixMilli(), 10),
		strconv.FormatInt(limit, 10),
	).Int()
	if err != nil {
		return 0, fmt.Errorf("queue: failed to promote scheduled tasks: %w", err)
	}
	return moved, nil
}

// Dequeue pops the next ready task. The boolean is false when the list is
// empty. Ids whose payload has vanished are skipped.
func (q *RedisQueue) Dequeue(ctx context.Context) (domain.Task, bool, error) {
	for {
		res, err := dequeueScript.Run(ctx, q.client, []string{q.readyKey}, q.taskPrefix).Result()
		if errors.Is(err, redis.Nil) {
			return domain.Task{}, false, nil
		}
		if err != nil {
			return domain.Task{}, false, fmt.Errorf("queue: failed to dequeue: %w", err)
		}

		reply, ok := res.([]interface{})
		if !ok || len(reply) == 0 {
			return domain.Task{}, false, fmt.Errorf("queue: unexpected dequeue reply %T", res)
		}
		if len(reply) < 2 || reply[1] == nil {
			continue
		}

		payload, ok := reply[1].(string)
		if !ok {
			return domain.Task{}, false, fmt.Errorf("queue: unexpected payload type %T", reply[1])
		}

		var task domain.Task
		if err := json.Unmarshal([]byte(payload), &task); err != nil {
			return domain.Task{}, false, fmt.Errorf("queue: failed to decode task %v: %w", reply[0], err)
		}
		return task, true, nil
	}
}

func (q *RedisQueue) Ack(ctx context.Context, taskID string) error {
	if err := q.client.Del(ctx, q.taskKey(taskID)).Err(); err != nil {
		return fmt.Errorf("queue: failed to ack task %s: %w", taskID, err)
	}
	return nil
}

func (q *RedisQueue) DeadLetter(ctx context.Context, task domain.Task, reason string) error {
	record, err := json.Marshal(DeadLetterRecord{Task: task, Reason: reason, FailedAt: q.now()})
	if err != nil {
		return fmt.Errorf("queue: failed to encode dead letter %s: %w", task.ID, err)
	}

	pipe := q.client.TxPipeline()
	pipe.RPush(ctx, q.dlqKey, record)
	pipe.Del(ctx, q.taskKey(task.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("queue: failed to dead-letter task %s: %w", task.ID, err)
	}
	return nil
}

// DeadLetters reads up to count of the oldest dead-lettered records.
func (q *RedisQueue) DeadLetters(ctx context.Context, count int64) ([]DeadLetterRecord, error) {
	if count <= 0 {
		return nil, nil
	}
	raw, err := q.client.LRange(ctx, q.dlqKey, 0, count-1).Result()
	if err != nil {
		return nil, fmt.Errorf("queue: failed to read dead letters: %w", err)
	}

	records := make([]DeadLetterRecord, 0, len(raw))
	for _, item := range raw {
		var record DeadLetterRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("queue: failed to decode dead letter: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (q *RedisQueue) Depth(ctx context.Context) (Depth, error) {
	pipe := q.client.Pipeline()
	ready := pipe.LLen(ctx, q.readyKey)
	scheduled := pipe.ZCard(ctx, q.scheduledKey)
	dead := pipe.LLen(ctx, q.dlqKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Depth{}, fmt.Errorf("queue: failed to read depth: %w", err)
	}
	return Depth{Ready: ready.Val(), Scheduled: scheduled.Val(), DeadLettered: dead.Val()}, nil
}

var promoteScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
local moved = 0
for _, id in ipairs(ids) do
  if redis.call('ZREM', KEYS[1], id) == 1 then
    redis.call('RPUSH', KEYS[2], id)
    moved = moved + 1
  end
end
return moved
`)

var dequeueScript = redis.NewScript(`
local id = redis.call('LPOP', KEYS[1])
if not id then
  return nil
end
local payload = redis.call('HGET', ARGV[1] .. id, 'payload')
return {id, payload}
`)
