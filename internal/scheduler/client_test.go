package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"salesdesk_backend/platform/config"
)

func TestScheduleCallbackReminderEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		RedisURL:       "redis://" + mr.Addr(),
		AsynqQueueName: "reminders",
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	runAt := time.Now().Add(30 * time.Minute)
	err = client.ScheduleCallbackReminder(context.Background(), uuid.New(), uuid.New(), runAt)
	if err != nil {
		t.Fatalf("ScheduleCallbackReminder: %v", err)
	}

	// Future tasks land in the queue's scheduled set.
	if exists := mr.Exists("asynq:{reminders}:scheduled"); !exists {
		t.Fatalf("expected scheduled task set in redis, found keys %v", mr.Keys())
	}
}

func TestScheduleCallbackReminderNilClientIsNoop(t *testing.T) {
	var client *Client
	err := client.ScheduleCallbackReminder(context.Background(), uuid.New(), uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("nil client should be a no-op, got %v", err)
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(&config.Config{}); err == nil {
		t.Fatal("expected error when redis url is empty")
	}
}
