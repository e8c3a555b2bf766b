package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "navserver"

	metricLabelHandler = "handler"
	metricLabelStatus  = "status"
	metricLabelSource  = "source"
	metricLabelRemote  = "remote"
	metricLabelTree    = "tree"
	metricLabelCode    = "code"
)

var (
	// UnknownTargetRequests counts requests for targets that are not in a tree
	UnknownTargetRequests = newCounterVec(
		"unknown_target_request_count",
		"Counts the number of requests for targets that do not resolve",
		metricLabelTree,
	)
	// ServiceRequestCounter count the number of requests for each service function
	ServiceRequestCounter = newCounterVec(
		"service_request_count",
		"Count of requests for each handler",
		metricLabelHandler, metricLabelStatus, metricLabelSource,
	)
	// ServiceRequestDuration observe the duration of requests for each service function
	ServiceRequestDuration = newSummaryVec(
		"service_request_duration_seconds",
		"Seconds to unmarshal requests, execute a service function and marshal its reponses",
		metricLabelHandler, metricLabelStatus, metricLabelSource,
	)
	// UpdatesCompletedCounter count the number of successful updates
	UpdatesCompletedCounter = newCounterVec(
		"updates_completed_count",
		"Number of updates that were successfully completed",
	)
	// UpdatesFailedCounter count the number of updates that had an error
	UpdatesFailedCounter = newCounterVec(
		"updates_failed_count",
		"Number of updates that failed due to an error",
	)
	// UpdatesRejectedCounter count the number of updates rejected while another one was running
	UpdatesRejectedCounter = newCounterVec(
		"updates_rejected_count",
		"Number of updates rejected because an update was in progress",
	)
	// UpdateDuration observe the duration of each repo.update() call
	UpdateDuration = newSummaryVec(
		"update_duration_seconds",
		"Duration in seconds for each repo.update() call",
	)
	// TreeRequestCounter count the total number of tree requests
	TreeRequestCounter = newCounterVec(
		"tree_request_count",
		"Number of requests for navigation trees",
		metricLabelSource,
	)
	// NumSocketsGauge keep track of the total number of open sockets
	NumSocketsGauge = newGaugeVec(
		"num_sockets_total",
		"Total number of currently open socket connections",
		metricLabelRemote,
	)
	// HistoryPersistFailedCounter count the number of failed attempts to persist a snapshot
	HistoryPersistFailedCounter = newCounterVec(
		"history_persist_failed_count",
		"Number of failures to store a navigation snapshot in the history",
	)
	// TreeNodesGauge number of nodes of each loaded tree
	TreeNodesGauge = newGaugeVec(
		"tree_nodes",
		"Number of nodes in a loaded navigation tree",
		metricLabelTree,
	)
	// LintIssuesCounter issues found by lint runs
	LintIssuesCounter = newCounterVec(
		"lint_issues_count",
		"Number of issues reported by lint runs",
		metricLabelTree, metricLabelCode,
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newGaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}
