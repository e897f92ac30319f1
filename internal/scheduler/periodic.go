package scheduler

import (
	"github.com/hibiken/asynq"

	"salesdesk_backend/platform/config"
)

// digestCron fires the follow-up digest every morning at 08:00 server time.
const digestCron = "0 8 * * *"

// NewDigestScheduler returns an asynq scheduler that enqueues the daily
// follow-up digest task. The caller runs it alongside the worker.
func NewDigestScheduler(cfg config.SchedulerConfig) (*asynq.Scheduler, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	sched := asynq.NewScheduler(opt, nil)
	if _, err := sched.Register(digestCron, NewFollowUpDigestTask(), asynq.Queue(queue)); err != nil {
		return nil, err
	}
	return sched, nil
}
