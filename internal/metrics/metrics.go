package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Ingestion Metrics
var (
	GameEventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGameEventsIngested,
			Help: HelpTextGameEventsIngested,
		},
		[]string{LabelSource, LabelEventType},
	)

	GameEventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGameEventsDropped,
			Help: HelpTextGameEventsDropped,
		},
		[]string{LabelSource, LabelReason},
	)

	EventProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameEventProcessingDuration,
			Help:    HelpTextEventProcessingDuration,
			Buckets: ProcessingBuckets,
		},
		[]string{LabelEventType},
	)
)

// Progress Metrics
var (
	ProgressCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameProgressCalculations,
			Help: HelpTextProgressCalculations,
		},
		[]string{LabelRequirementType},
	)

	ProgressWriteConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameProgressWriteConflicts,
			Help: HelpTextProgressWriteConflicts,
		},
	)

	RequirementCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRequirementCompletions,
			Help: HelpTextRequirementCompletions,
		},
		[]string{LabelRequirementType},
	)

	TierCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameTierCompletions,
			Help: HelpTextTierCompletions,
		},
		[]string{LabelRequirementType},
	)

	TileCompletions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameTileCompletions,
			Help: HelpTextTileCompletions,
		},
	)
)

// Ranking Service Metrics
var (
	RankingLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRankingLookups,
			Help: HelpTextRankingLookups,
		},
		[]string{LabelResult},
	)
)
