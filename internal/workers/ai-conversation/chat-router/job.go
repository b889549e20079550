// internal/workers/ai-conversation/chat-router/job.go
package chatrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "pk-market-chat/internal/common/errors"
	"pk-market-chat/internal/common/logger"
	"pk-market-chat/internal/common/metrics"
	"pk-market-chat/internal/common/validation"
	"pk-market-chat/internal/models"
	parseuserintent "pk-market-chat/internal/workers/ai-conversation/parse-user-intent"
	"pk-market-chat/pkg/registry"
)

const TaskType = "chat-respond"

var inputSchema = MustInputSchema()

// MustInputSchema compiles the registered input contract of TaskType.
func MustInputSchema() *validation.Schema {
	activity := registry.MustActivity(TaskType)
	s, err := validation.CompileGo("ChatRequest", activity.InputSchema)
	if err != nil {
		panic(err)
	}
	return s
}

// JobHandler exposes the router as a Zeebe job worker. Chat jobs are never
// retried: rejected requests are thrown as BPMN errors.
type JobHandler struct {
	router       *Router
	timeout      time.Duration
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewJobHandler(router *Router, timeout time.Duration, log logger.Logger) *JobHandler {
	l := log.With(map[string]interface{}{"taskType": TaskType})
	return &JobHandler{
		router:       router,
		timeout:      timeout,
		errorHandler: apperrors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *JobHandler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	output, err := h.Execute(ctx, job.Variables)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return nil
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	return nil
}

// Execute routes the chat request carried in the job variables.
func (h *JobHandler) Execute(ctx context.Context, variables string) (*JobOutput, error) {
	if err := inputSchema.Check([]byte(variables)); err != nil {
		return nil, apperrors.NewInvalidRequestError(err)
	}

	req := models.NewChatRequest()
	if err := json.Unmarshal([]byte(variables), req); err != nil {
		return nil, apperrors.NewInvalidRequestError(fmt.Errorf("parse input: %w", err))
	}
	req.ApplyDefaults()

	reply, err := h.router.Route(ctx, req)
	if err != nil {
		return nil, err
	}

	return &JobOutput{
		Response: reply.Text,
		Status:   string(reply.Status),
		Intent:   string(parseuserintent.Classify(req.Message, req.Mode).Intent),
	}, nil
}
