package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ParamServiceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "param_service_requests_total",
			Help: "Requests sent to the parameter service by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ParamServiceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "param_service_request_duration_seconds",
			Help:    "Latency of parameter service requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ValidationRounds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "param_validation_rounds_total",
			Help: "Validation round trips by result (applied, failed)",
		},
		[]string{"result"},
	)

	ValidationStale = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "param_validation_stale_total",
			Help: "Validation responses discarded because a newer request was issued",
		},
	)

	ValidationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "param_validations_in_flight",
			Help: "Validation requests currently awaiting a response",
		},
	)

	Calculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "param_calculations_total",
			Help: "Calculation requests by result",
		},
		[]string{"result"},
	)

	PresetOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "param_preset_operations_total",
			Help: "Preset store operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	PresetStorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "param_preset_storage_errors_total",
			Help: "Preset storage read/write failures by backend",
		},
		[]string{"backend", "operation"},
	)

	SchemaCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "param_schema_cache_lookups_total",
			Help: "Schema cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultApplied = "applied"
	ResultStale   = "stale"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)
