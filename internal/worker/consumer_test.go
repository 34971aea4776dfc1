package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/joshuarp/taskguard-api/internal/domain"
	"github.com/joshuarp/taskguard-api/internal/executor"
	"github.com/joshuarp/taskguard-api/internal/resilience"
	"github.com/joshuarp/taskguard-api/internal/shared/queue"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ConsumerSuite struct {
	suite.Suite

	server   *miniredis.Miniredis
	queue    *queue.RedisQueue
	registry *resilience.Registry
	consumer *Consumer
	now      time.Time
	calls    atomic.Int32
}

func (s *ConsumerSuite) SetupTest() {
	s.server = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.server.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })

	s.now = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s.calls.Store(0)
	s.queue = queue.NewRedisQueue(client, "test")
	s.registry = resilience.NewRegistry(resilience.DefaultSettings(), newTestLogger(),
		resilience.WithClock(func() time.Time { return s.now }),
		resilience.WithJitter(nil),
	)

	runner := executor.New(s.registry, nil, newTestLogger())
	s.consumer = NewConsumer(s.queue, runner, newTestLogger(), Config{Concurrency: 2, PollInterval: 10 * time.Millisecond})
	s.consumer.now = func() time.Time { return s.now }
}

func (s *ConsumerSuite) register(name string, results ...error) {
	s.consumer.Register(name, func(context.Context, domain.Task) (any, error) {
		call := int(s.calls.Add(1)) - 1
		if call < len(results) {
			return nil, results[call]
		}
		return "ok", nil
	})
}

func (s *ConsumerSuite) enqueue(task domain.Task) {
	require.NoError(s.T(), s.queue.Enqueue(context.Background(), task))
}

func (s *ConsumerSuite) depth() queue.Depth {
	depth, err := s.queue.Depth(context.Background())
	require.NoError(s.T(), err)
	return depth
}

func (s *ConsumerSuite) TestEmptyQueue() {
	processed, err := s.consumer.ProcessNext(context.Background())
	require.NoError(s.T(), err)
	assert.False(s.T(), processed)
}

func (s *ConsumerSuite) TestSuccessAcks() {
	s.register("send_email")
	s.enqueue(domain.Task{ID: "1", Name: "send_email", MaxRetries: 3})

	processed, err := s.consumer.ProcessNext(context.Background())
	require.NoError(s.T(), err)
	assert.True(s.T(), processed)
	assert.Equal(s.T(), queue.Depth{}, s.depth())
	assert.False(s.T(), s.server.Exists("test:queue:task:1"))
}

func (s *ConsumerSuite) TestRetryableFailureIsRescheduled() {
	s.register("send_email", errors.New("template render failed"))
	s.enqueue(domain.Task{ID: "1", Name: "send_email", MaxRetries: 3})

	processed, err := s.consumer.ProcessNext(context.Background())
	require.NoError(s.T(), err)
	assert.True(s.T(), processed)
	assert.Equal(s.T(), queue.Depth{Scheduled: 1}, s.depth())

	processed, err = s.consumer.ProcessNext(context.Background())
	require.NoError(s.T(), err)
	assert.False(s.T(), processed, "retry must wait for its delay")

	s.now = s.now.Add(61 * time.Second)
	processed, err = s.consumer.ProcessNext(context.Background())
	require.NoError(s.T(), err)
	assert.True(s.T(), processed)
	assert.Equal(s.T(), int32(2), s.calls.Load())
	assert.Equal(s.T(), queue.Depth{}, s.depth())
}

func (s *ConsumerSuite) TestExhaustedFailureIsDeadLettered() {
	s.register("send_email", errors.New("template render failed"))
	s.enqueue(domain.Task{ID: "1", Name: "send_email", MaxRetries: 0})

	_, err := s.consumer.ProcessNext(context.Background())
	require.NoError(s.T(), err)

	records, err := s.queue.DeadLetters(context.Background(), 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), records, 1)
	assert.True(s.T(), strings.HasPrefix(records[0].Reason, "exhausted: "), records[0].Reason)
	assert.Contains(s.T(), records[0].Reason, "template render failed")
}

func (s *ConsumerSuite) TestUnknownTaskIsDeadLettered() {
	s.enqueue(domain.Task{ID: "1", Name: "does_not_exist"})

	processed, err := s.consumer.ProcessNext(context.Background())
	require.NoError(s.T(), err)
	assert.True(s.T(), processed)

	records, err := s.queue.DeadLetters(context.Background(), 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), records, 1)
	assert.Equal(s.T(), "no handler registered for task does_not_exist", records[0].Reason)
}

func (s *ConsumerSuite) TestAdmissionDenialDefersWithoutConsumingRetry() {
	s.register("send_email")
	s.registry.RecordFailure("send_email", resilience.Outcome{Err: errors.New("smtp connection refused"), MaxRetries: 3})
	s.enqueue(domain.Task{ID: "1", Name: "send_email", MaxRetries: 3})

	processed, err := s.consumer.ProcessNext(context.Background())
	require.NoError(s.T(), err)
	assert.True(s.T(), processed)
	assert.Zero(s.T(), s.calls.Load())
	assert.Equal(s.T(), queue.Depth{Scheduled: 1}, s.depth())

	_, err = s.queue.PromoteDue(context.Background(), s.now.Add(31*time.Minute), 10)
	require.NoError(s.T(), err)
	task, ok, err := s.queue.Dequeue(context.Background())
	require.NoError(s.T(), err)
	require.True(s.T(), ok)
	assert.Zero(s.T(), task.RetryCount)
}

func (s *ConsumerSuite) TestStartStop() {
	s.consumer.Register(EchoHandler().Name, EchoHandler().Run)
	s.enqueue(domain.Task{ID: "1", Name: EchoTaskName, Args: []any{"ping"}})
	s.enqueue(domain.Task{ID: "2", Name: EchoTaskName, Args: []any{"pong"}})

	require.NoError(s.T(), s.consumer.Start(context.Background()))
	require.Error(s.T(), s.consumer.Start(context.Background()))

	require.Eventually(s.T(), func() bool {
		depth, err := s.queue.Depth(context.Background())
		return err == nil && depth == queue.Depth{}
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(s.T(), s.consumer.Stop(ctx))
	require.NoError(s.T(), s.consumer.Stop(ctx))

	stats, ok := s.registry.TaskStats(EchoTaskName)
	require.True(s.T(), ok)
	assert.Equal(s.T(), int64(2), stats.Performance.TotalExecutions)
}

func TestConsumerSuite(t *testing.T) {
	suite.Run(t, new(ConsumerSuite))
}
