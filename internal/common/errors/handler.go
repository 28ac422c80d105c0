package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Logger is the subset of logger.Logger the handler needs. Declared here to
// keep this package free of internal imports.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler reports a failed job to the broker: retryable errors fail the
// job with a bounded retry count, everything else is thrown as a BPMN error.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError returns the BPMN error that was reported, or the broker
// error if the command could not be sent.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) (*BPMNError, error) {
	stdErr, ok := AsStandard(err)
	if !ok {
		stdErr = NewInternalError(err)
	}
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    bpmnErr.Code,
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retries":          bpmnErr.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})

	if bpmnErr.Retries > 0 && job.Retries > 1 {
		return bpmnErr, h.fail(ctx, client, job, bpmnErr)
	}
	return bpmnErr, h.throw(ctx, client, job, bpmnErr)
}

func (h *ErrorHandler) fail(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) error {
	retries := int32(bpmnErr.Retries)
	if job.Retries-1 < retries {
		retries = job.Retries - 1
	}

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(bpmnErr.Message)

	vars, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil {
		_, err = cmd.Send(ctx)
		return err
	}
	withVars, err := cmd.VariablesFromString(string(vars))
	if err != nil {
		_, err = cmd.Send(ctx)
		return err
	}
	_, err = withVars.Send(ctx)
	return err
}

func (h *ErrorHandler) throw(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) error {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	vars, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil {
		_, err = cmd.Send(ctx)
		return err
	}
	withVars, err := cmd.VariablesFromString(string(vars))
	if err != nil {
		_, err = cmd.Send(ctx)
		return err
	}
	_, err = withVars.Send(ctx)
	return err
}
