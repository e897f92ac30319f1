// Package scheduler enqueues and processes background tasks through asynq.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCallbackReminder = "callback.reminder"

const TaskFollowUpDigest = "followups.digest"

type CallbackReminderPayload struct {
	TodoID  string `json:"todoId"`
	AgentID string `json:"agentId"`
}

func NewCallbackReminderTask(payload CallbackReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCallbackReminder, data), nil
}

func ParseCallbackReminderPayload(task *asynq.Task) (CallbackReminderPayload, error) {
	var payload CallbackReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CallbackReminderPayload{}, err
	}
	return payload, nil
}

// NewFollowUpDigestTask carries no payload; the worker recomputes the digest
// for every agent at run time.
func NewFollowUpDigestTask() *asynq.Task {
	return asynq.NewTask(TaskFollowUpDigest, nil)
}
