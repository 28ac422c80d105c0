package camunda

import (
	"nc-param-manager/internal/common/config"
	"nc-param-manager/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every job worker handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// StartWorker opens a job worker for taskType. It returns nil when the
// worker is disabled in config.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, log logger.Logger) worker.JobWorker {
	fields := map[string]interface{}{"taskType": taskType}
	if !wcfg.Enabled {
		log.Info("worker disabled", fields)
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	fields["maxJobsActive"] = wcfg.MaxJobsActive
	fields["timeout_ms"] = wcfg.Timeout
	log.Info("worker started", fields)
	return jobWorker
}
