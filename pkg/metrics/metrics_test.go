package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

// value reads the current value of a single-metric counter or gauge.
func value(c prometheus.Collector) float64 {
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	var pb dto.Metric
	if err := (<-ch).Write(&pb); err != nil {
		return -1
	}
	if pb.Counter != nil {
		return pb.Counter.GetValue()
	}
	return pb.Gauge.GetValue()
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors are registered under the default namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.valuations.WithLabelValues("inline", "computed").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "valuator_catalog_valuations_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "unit")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.constLabels["env"], ShouldEqual, "test")
			})
		})

		Convey("When empty option values are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "valuator")
				So(manager.subsystem, ShouldEqual, "catalog")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("Valuation counters move", func() {
			before := value(globalManager.valuations.WithLabelValues("catalog", "computed"))
			RecordValuation("catalog", "computed")
			So(value(globalManager.valuations.WithLabelValues("catalog", "computed")), ShouldEqual, before+1)
		})

		Convey("Non-positive counts are ignored", func() {
			before := value(globalManager.malformedSplits)
			RecordMalformedSplits(0)
			RecordMalformedSplits(-3)
			So(value(globalManager.malformedSplits), ShouldEqual, before)
			RecordMalformedSplits(2)
			So(value(globalManager.malformedSplits), ShouldEqual, before+2)
		})

		Convey("Cache gauges reflect the last value", func() {
			UpdateCacheSize(7)
			So(value(globalManager.cacheSize), ShouldEqual, 7.0)
		})

		Convey("The worker gauge follows running workers", func() {
			before := value(globalManager.workerActiveCount)
			AddWorkerActive(2)
			So(value(globalManager.workerActiveCount), ShouldEqual, before+2)
			AddWorkerActive(-2)
			So(value(globalManager.workerActiveCount), ShouldEqual, before)
		})

		Convey("Recording helpers never panic", func() {
			So(func() {
				RecordEstimateLatency(1.5)
				RecordUnknownGenres(1)
				RecordTracksValued(12)
				RecordCacheHit()
				RecordCacheMiss()
				RecordStoreQueryLatency("released_tracks", 0.4)
				RecordStoreError("put_tracks")
				UpdateCatalogsTotal(3)
				RecordBatchJob("ok")
				RecordBatchJobLatency(3)
				RecordHTTPRequest("valuations", "POST", "200")
				RecordHTTPRequestDuration("valuations", "POST", "200", 2)
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("valuations", "POST", "client_error")
				RecordErrorLatency("http", "client_error", 1)
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(4)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("Durations convert to fractional milliseconds", func() {
			So(Milliseconds(1500*time.Microsecond), ShouldEqual, 1.5)
			So(Milliseconds(250*time.Microsecond), ShouldEqual, 0.25)
			So(Milliseconds(2*time.Second), ShouldEqual, 2000.0)
		})

		Convey("The custom registry is exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}
