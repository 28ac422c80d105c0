package prepareparameters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nc-param-manager/internal/common/camunda"
	"nc-param-manager/internal/common/config"
	"nc-param-manager/internal/common/errors"
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/common/metrics"
	"nc-param-manager/internal/common/observability"
	"nc-param-manager/internal/presets"
	"nc-param-manager/internal/session"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "nc.parameters.prepare"
	// WorkerName keys the worker's section under workers: in config.yaml.
	WorkerName = "prepare-parameters"
)

type Handler struct {
	config     *Config
	logger     logger.Logger
	service    *Service
	errHandler *errors.ErrorHandler
	obs        *observability.Observability
	jobWorker  worker.JobWorker
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Params        session.Service
	Presets       *presets.Store
	Logger        logger.Logger
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Params == nil {
		return nil, fmt.Errorf("invalid configuration for %s: parameter service is required", TaskType)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}

	h := &Handler{
		config:     workerConfig,
		logger:     loggerInstance,
		errHandler: errors.NewErrorHandler(loggerInstance),
		obs:        opts.Observability,
	}
	h.service = NewService(ServiceDependencies{
		Logger:  loggerInstance,
		Params:  opts.Params,
		Presets: opts.Presets,
	}, workerConfig)
	return h, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := h.obs.StartSpan(ctx, "job."+TaskType, attribute.Int64("job.key", job.GetKey()))
	defer span.End()

	h.logger.Info("Processing parameter preparation", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"worker":             TaskType,
	})

	input, err := h.parseInput(job)
	if err == nil {
		span.SetAttributes(attribute.String("param.package", input.PackageName))
		var output *Output
		if output, err = h.Execute(ctx, input); err == nil {
			h.completeJob(ctx, client, job, output)
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
			h.obs.RecordJobProcessed(ctx, "completed")
			h.obs.RecordJobDuration(ctx, time.Since(startTime), "completed")
			return
		}
	}

	span.RecordError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.obs.RecordJobProcessed(ctx, "failed")
	h.obs.RecordJobDuration(ctx, time.Since(startTime), "failed")
	if _, sendErr := h.errHandler.HandleJobError(ctx, client, job, err); sendErr != nil {
		h.logger.Error("Failed to report job error", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  sendErr.Error(),
			"worker": TaskType,
		})
	}
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse job variables: %v", err))
	}

	result, err := GetInputSchema().Validate(variables)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("Validation errors: %v", result.GetErrorMessages()))
	}

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("decode input: %v", err))
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	fields := map[string]interface{}{
		"jobKey": job.GetKey(),
		"worker": TaskType,
	}

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(output.Variables())
	if err != nil {
		fields["error"] = err.Error()
		h.logger.Error("Failed to create complete job command", fields)
		return
	}
	if _, err := request.Send(ctx); err != nil {
		fields["error"] = err.Error()
		h.logger.Error("Failed to complete job", fields)
		return
	}

	fields["valid"] = output.Validation.Valid
	fields["completionPercentage"] = output.CompletionPercentage
	h.logger.Info("Parameter preparation completed", fields)
}

// Register opens the job worker on client. A disabled worker is skipped.
func (h *Handler) Register(client zbc.Client) {
	h.jobWorker = camunda.StartWorker(client, TaskType, h.config.workerConfig(), h, h.logger)
}

func (h *Handler) Close() {
	if h.jobWorker != nil {
		h.logger.Info("Shutting down worker gracefully", map[string]interface{}{
			"worker": TaskType,
		})
		h.jobWorker.Close()
		h.jobWorker.AwaitClose()
		h.jobWorker = nil
	}
}

func (h *Handler) GetTaskType() string { return TaskType }

func (h *Handler) IsEnabled() bool { return h.config.Enabled }

func (h *Handler) GetConfig() *Config { return h.config }

// Execute runs the preparation without a broker.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}
