package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rushteam/recodata/dataset"
)

// Metrics 记录每个 Node 的耗时、输出行数与失败次数。使用独立的 Registry，
// 批处理任务结束时通过 WriteTextfile 输出给 node_exporter 的 textfile collector。
type Metrics struct {
	Registry *prometheus.Registry

	NodeDuration *prometheus.HistogramVec
	NodeRows     *prometheus.GaugeVec
	NodeErrors   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		NodeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recodata_node_duration_seconds",
				Help:    "Duration of pipeline node execution in seconds",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
			},
			[]string{"pipeline", "node", "kind"},
		),
		NodeRows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "recodata_node_output_rows",
				Help: "Number of rows produced by the last run of a pipeline node",
			},
			[]string{"pipeline", "node", "kind"},
		),
		NodeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recodata_node_errors_total",
				Help: "Total number of failed pipeline node executions",
			},
			[]string{"pipeline", "node", "kind"},
		),
	}
}

func (m *Metrics) observe(pipeline string, node Node, elapsed time.Duration, out *dataset.Table, err error) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"pipeline": pipeline, "node": node.Name(), "kind": string(node.Kind())}
	m.NodeDuration.With(labels).Observe(elapsed.Seconds())
	if err != nil {
		m.NodeErrors.With(labels).Inc()
		return
	}
	m.NodeRows.With(labels).Set(float64(out.Len()))
}

// WriteTextfile 以 Prometheus 文本格式写出全部指标。
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
