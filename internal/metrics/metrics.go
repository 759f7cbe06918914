// Package metrics exposes project progress as Prometheus gauges.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/nibzard/planner-go/internal/plan"
	"github.com/nibzard/planner-go/internal/progress"
)

// Collector owns a private registry with the planner gauges.
type Collector struct {
	registry *prometheus.Registry

	TasksTotal      prometheus.Gauge
	TasksCompleted  prometheus.Gauge
	PhasesTotal     prometheus.Gauge
	PhasesCompleted prometheus.Gauge
	PhaseRatio      *prometheus.GaugeVec
	PhaseTasks      *prometheus.GaugeVec
	LastUpdate      prometheus.Gauge
}

// New registers the planner gauges on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		TasksTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "planner_tasks_total",
			Help: "Number of tasks and subtasks at every depth",
		}),
		TasksCompleted: factory.NewGauge(prometheus.GaugeOpts{
			Name: "planner_tasks_completed",
			Help: "Number of completed tasks and subtasks at every depth",
		}),
		PhasesTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "planner_phases_total",
			Help: "Number of phases",
		}),
		PhasesCompleted: factory.NewGauge(prometheus.GaugeOpts{
			Name: "planner_phases_completed",
			Help: "Number of phases whose tasks are all completed",
		}),
		PhaseRatio: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_phase_completion_ratio",
			Help: "Completed share of a phase's flattened task tree (0-1)",
		}, []string{"phase"}),
		PhaseTasks: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_phase_tasks",
			Help: "Tasks in a phase's flattened tree by state",
		}, []string{"phase", "state"}),
		LastUpdate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "planner_last_update_timestamp_seconds",
			Help: "Unix time of the last recorded project mutation",
		}),
	}
}

// Registry returns the registry holding the gauges.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe sets every gauge from the project. Series of phases that no
// longer exist are dropped.
func (c *Collector) Observe(p *plan.Project) {
	pp := progress.Calculate(p)
	c.TasksTotal.Set(float64(pp.Tasks.Total))
	c.TasksCompleted.Set(float64(pp.Tasks.Completed))
	c.PhasesTotal.Set(float64(pp.Phases.Total))
	c.PhasesCompleted.Set(float64(pp.Phases.Completed))

	c.PhaseRatio.Reset()
	c.PhaseTasks.Reset()
	for _, ph := range p.Phases {
		pr := plan.CalculatePhaseProgress(ph)
		c.PhaseRatio.WithLabelValues(ph.ID).Set(pr.Percentage / 100)
		c.PhaseTasks.WithLabelValues(ph.ID, "completed").Set(float64(pr.Completed))
		c.PhaseTasks.WithLabelValues(ph.ID, "pending").Set(float64(pr.Total - pr.Completed))
	}

	if !p.LastUpdate.IsZero() {
		c.LastUpdate.Set(float64(p.LastUpdate.Unix()))
	}
}

// WriteTextfile writes the current values in the text exposition format,
// suitable for the node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// WriteText writes the current values in the text exposition format to w.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
