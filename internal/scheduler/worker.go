package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	authrepo "salesdesk_backend/internal/auth/repository"
	"salesdesk_backend/internal/authz"
	"salesdesk_backend/internal/email"
	leadsrepo "salesdesk_backend/internal/leads/repository"
	"salesdesk_backend/internal/todos"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"
)

// Worker processes scheduled tasks: callback reminders and the daily
// follow-up digest.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	todos  *todos.Repository
	users  *authrepo.Repository
	leads  *leadsrepo.Repository
	mail   email.Sender
	log    *logger.Logger
	now    func() time.Time
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, mail email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		todos:  todos.NewRepository(pool),
		users:  authrepo.New(pool),
		leads:  leadsrepo.New(pool),
		mail:   mail,
		log:    log,
		now:    time.Now,
	}

	mux.HandleFunc(TaskCallbackReminder, w.handleCallbackReminder)
	mux.HandleFunc(TaskFollowUpDigest, w.handleFollowUpDigest)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleCallbackReminder emails the agent about a due callback. The reminder
// is skipped when the todo was completed or deleted before it fired.
func (w *Worker) handleCallbackReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCallbackReminderPayload(task)
	if err != nil {
		return err
	}

	todoID, err := uuid.Parse(payload.TodoID)
	if err != nil {
		return err
	}
	agentID, err := uuid.Parse(payload.AgentID)
	if err != nil {
		return err
	}

	todo, err := w.todos.GetByID(ctx, todoID)
	if err != nil {
		w.log.Debug("callback reminder todo gone, skipping", "todoId", todoID)
		return nil
	}
	if todo.Completed {
		return nil
	}

	agent, err := w.users.GetUserByID(ctx, agentID)
	if err != nil {
		return err
	}

	company := strings.TrimPrefix(todo.Title, "Callback: ")
	dueAt := ""
	if todo.DueDate != nil {
		dueAt = todo.DueDate.Format("2006-01-02 15:04")
	}
	return w.mail.SendCallbackReminderEmail(ctx, agent.Email, agent.Name, company, dueAt)
}

// handleFollowUpDigest emails every agent their due and overdue leads for the
// day. Agents with nothing due get no email.
func (w *Worker) handleFollowUpDigest(ctx context.Context, _ *asynq.Task) error {
	users, err := w.users.ListUsers(ctx)
	if err != nil {
		return err
	}

	now := w.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	for i := range users {
		user := &users[i]
		scope := authz.Scope{UserID: user.ID}

		due, err := w.leads.LeadsDueBetween(ctx, scope, dayStart, dayEnd)
		if err != nil {
			w.log.Error("digest due query failed", "userId", user.ID, "error", err)
			continue
		}
		overdue, err := w.leads.LeadsOverdue(ctx, scope, dayStart)
		if err != nil {
			w.log.Error("digest overdue query failed", "userId", user.ID, "error", err)
			continue
		}
		if len(due) == 0 && len(overdue) == 0 {
			continue
		}

		digest := make([]email.DigestLead, 0, len(overdue)+len(due))
		for _, lead := range append(overdue, due...) {
			entry := email.DigestLead{
				CompanyName: lead.CompanyName,
				Stage:       string(lead.Stage),
			}
			if lead.NextFollowUpDate != nil {
				entry.DueDate = lead.NextFollowUpDate.Format("2006-01-02")
			}
			digest = append(digest, entry)
		}

		if err := w.mail.SendFollowUpDigestEmail(ctx, user.Email, user.Name, digest); err != nil {
			w.log.Error("digest send failed", "userId", user.ID, "error", err)
		}
	}
	return nil
}
