package testrunaggregatoranalyzer

import (
	"bytes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/afero"

	"github.com/openshift/testrun-aggregator/pkg/results"
	"github.com/openshift/testrun-aggregator/pkg/testrunaggregator/testrunaggregatorapi"
)

const metricsNamespace = "testrun_aggregator"

// aggregationMetrics describes one aggregation in a form the node exporter
// textfile collector can pick up.
type aggregationMetrics struct {
	registry *prometheus.Registry

	runnerHealthy       *prometheus.GaugeVec
	runnerFailureRatio  *prometheus.GaugeVec
	testVolatility      *prometheus.GaugeVec
	testClassification  *prometheus.GaugeVec
	brokenTest          *prometheus.GaugeVec
	malfunctioningTotal prometheus.Gauge
	flakyTotal          prometheus.Gauge
	brokenTotal         prometheus.Gauge
}

func newAggregationMetrics() *aggregationMetrics {
	m := &aggregationMetrics{
		registry: prometheus.NewRegistry(),

		runnerHealthy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "runner_healthy",
				Help:      "1 if the runner was trusted, 0 if it was malfunctioning.",
			},
			[]string{"runner"},
		),
		runnerFailureRatio: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "runner_failure_ratio",
				Help:      "Ratio of failed test records of a runner, over all branches or the mainline only.",
			},
			[]string{"runner", "scope"},
		),
		testVolatility: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "test_volatility",
				Help:      "Number of pass/fail transitions of a test on the mainline.",
			},
			[]string{"test"},
		),
		testClassification: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "test_classification",
				Help:      "Set to 1 for the classification a test received.",
			},
			[]string{"test", "classification"},
		),
		brokenTest: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "broken_test",
				Help:      "Set to 1 for a test broken on the mainline, labeled with the commit it broke at.",
			},
			[]string{"test", "commit"},
		),
		malfunctioningTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "malfunctioning_runners",
			Help:      "Number of malfunctioning runners, including skipped malformed files.",
		}),
		flakyTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "flaky_tests",
			Help:      "Number of flaky tests.",
		}),
		brokenTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "broken_tests",
			Help:      "Number of tests broken on the mainline.",
		}),
	}
	m.registry.MustRegister(
		m.runnerHealthy,
		m.runnerFailureRatio,
		m.testVolatility,
		m.testClassification,
		m.brokenTest,
		m.malfunctioningTotal,
		m.flakyTotal,
		m.brokenTotal,
	)
	return m
}

func (m *aggregationMetrics) observe(result *testrunaggregatorapi.ClassificationResult) {
	for _, runner := range result.Runners {
		healthy := 0.0
		if runner.Healthy {
			healthy = 1
		}
		m.runnerHealthy.WithLabelValues(runner.Runner).Set(healthy)
		if !runner.Degenerate {
			m.runnerFailureRatio.WithLabelValues(runner.Runner, "all").Set(runner.FailureRatio)
			m.runnerFailureRatio.WithLabelValues(runner.Runner, "mainline").Set(runner.MainlineFailureRatio)
		}
	}
	for _, history := range result.Histories {
		m.testVolatility.WithLabelValues(history.TestName).Set(float64(history.Volatility))
		m.testClassification.WithLabelValues(history.TestName, string(history.Classification)).Set(1)
	}
	for test, commit := range result.MasterBrokenByTest() {
		m.brokenTest.WithLabelValues(test, commit.String()).Set(1)
	}
	m.malfunctioningTotal.Set(float64(len(result.MalfunctioningRunners)))
	m.flakyTotal.Set(float64(len(result.FlakyTests)))
	m.brokenTotal.Set(float64(len(result.MasterBroken)))
}

// writeMetricsFile renders the metrics of result in the text exposition format.
func writeMetricsFile(fs afero.Fs, path string, result *testrunaggregatorapi.ClassificationResult) error {
	m := newAggregationMetrics()
	m.observe(result)
	families, err := m.registry.Gather()
	if err != nil {
		return results.ForReason(results.ReasonWritingOutput).WithError(err).Errorf("failed to gather metrics")
	}
	buf := &bytes.Buffer{}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(buf, family); err != nil {
			return results.ForReason(results.ReasonWritingOutput).WithError(err).Errorf("failed to encode metric %s", family.GetName())
		}
	}
	return writeFile(fs, path, buf.Bytes())
}
