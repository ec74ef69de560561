// Package metrics exports the outcome of a run in the Prometheus text
// format, for the node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/dkimctl/internal/provisioning"
	"github.com/imamik/dkimctl/internal/resource"
)

const namespace = "dkimctl"

var statuses = []resource.Status{
	resource.StatusOK,
	resource.StatusChanged,
	resource.StatusSkipped,
	resource.StatusFailed,
}

// Recorder holds the metrics of one run against one host.
type Recorder struct {
	registry *prometheus.Registry

	resources     *prometheus.GaugeVec
	phaseDuration *prometheus.GaugeVec
	success       prometheus.Gauge
	keyGenerated  prometheus.Gauge
	lastRun       prometheus.Gauge
}

// NewRecorder creates a Recorder whose series carry the host label.
func NewRecorder(host string) *Recorder {
	labels := prometheus.Labels{"host": host}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		resources: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "run",
				Name:        "resources",
				Help:        "Number of resources in the last run by status",
				ConstLabels: labels,
			},
			[]string{"status"},
		),
		phaseDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "run",
				Name:        "phase_duration_seconds",
				Help:        "Time spent converging the resources of each phase in the last run",
				ConstLabels: labels,
			},
			[]string{"phase"},
		),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "run",
			Name:        "success",
			Help:        "Whether the last run succeeded (1) or not (0)",
			ConstLabels: labels,
		}),
		keyGenerated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "run",
			Name:        "key_generated",
			Help:        "Whether the last run generated a signing key (1) or not (0)",
			ConstLabels: labels,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "run",
			Name:        "timestamp_seconds",
			Help:        "Unix time the last run finished",
			ConstLabels: labels,
		}),
	}

	r.registry.MustRegister(r.resources, r.phaseDuration, r.success, r.keyGenerated, r.lastRun)
	return r
}

// Registry returns the registry holding the run metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Record sets the metrics from the results of a finished run.
func (r *Recorder) Record(results *provisioning.Results, state *provisioning.State, runErr error, finished time.Time) {
	recap := results.Recap()
	counts := map[resource.Status]int{
		resource.StatusOK:      recap.OK,
		resource.StatusChanged: recap.Changed,
		resource.StatusSkipped: recap.Skipped,
		resource.StatusFailed:  recap.Failed,
	}
	for _, s := range statuses {
		r.resources.WithLabelValues(string(s)).Set(float64(counts[s]))
	}

	r.phaseDuration.Reset()
	for _, res := range results.All() {
		r.phaseDuration.WithLabelValues(res.Phase).Add(res.Duration.Seconds())
	}

	r.success.Set(boolValue(runErr == nil))
	r.keyGenerated.Set(boolValue(state != nil && state.KeyGenerated))
	r.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile writes the metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
