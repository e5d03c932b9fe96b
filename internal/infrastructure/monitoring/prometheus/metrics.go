package prometheus

// AppMetrics holds every metric the service emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Auth layer
	AuthAttemptsTotal CounterVec

	// Prediction engine
	PredictionsTotal        CounterVec
	PredictionDuration      HistogramVec
	ComparableSampleSize    HistogramVec
	RetrievalStageReached   CounterVec
	BulkCandidatesEvaluated HistogramVec
	BulkTaskFailures        CounterVec

	// Annotator
	AnnotatorRequestsTotal CounterVec
	AnnotatorDuration      HistogramVec

	// Infrastructure
	DBQueryDuration  HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	EventsPublished  CounterVec

	// System health
	HealthCheckStatus GaugeVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	AnnotatorDurationBuckets   = []float64{.5, 1, 2, 5, 10, 30, 60}
	SampleSizeBuckets          = []float64{0, 1, 3, 5, 10, 15, 25, 50, 100}
	BulkSizeBuckets            = []float64{1, 2, 5, 10, 15, 20}
)

// NewAppMetrics registers all metrics on the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	m.AuthAttemptsTotal = collector.RegisterCounter("auth_attempts_total", "Authentication attempts", "result")

	m.PredictionsTotal = collector.RegisterCounter("predictions_total", "Evaluations performed", "mode", "rank", "confidence")
	m.PredictionDuration = collector.RegisterHistogram("prediction_duration_seconds", "Single evaluation duration", DefaultHTTPDurationBuckets, "mode")
	m.ComparableSampleSize = collector.RegisterHistogram("comparable_sample_size", "Comparables retained per evaluation", SampleSizeBuckets)
	m.RetrievalStageReached = collector.RegisterCounter("retrieval_stage_reached_total", "Deepest relaxation stage used", "stage")
	m.BulkCandidatesEvaluated = collector.RegisterHistogram("bulk_candidates_evaluated", "Candidates evaluated per bulk request", BulkSizeBuckets)
	m.BulkTaskFailures = collector.RegisterCounter("bulk_task_failures_total", "Dropped evaluations inside bulk requests")

	m.AnnotatorRequestsTotal = collector.RegisterCounter("annotator_requests_total", "Annotator calls", "status")
	m.AnnotatorDuration = collector.RegisterHistogram("annotator_duration_seconds", "Annotator call duration", AnnotatorDurationBuckets)

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublished = collector.RegisterCounter("events_published_total", "Domain events published", "type", "status")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Dependency health (1 up, 0 down)", "dependency")

	return m
}
