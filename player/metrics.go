package player

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the small, opt-in Prometheus collector a Player reports
// into, mirroring plexTuner's internal/tuner pattern of a Collector
// wired into the hot loop rather than a mandatory global registry.
type Metrics struct {
	framesDecoded   prometheus.Counter
	audioUnderflow  prometheus.Counter
	resyncTotal     prometheus.Counter
	avLagSeconds    prometheus.Gauge
}

// NewMetrics creates and registers the tsplay metric set on reg. Pass a
// fresh *prometheus.Registry, or prometheus.DefaultRegisterer to expose
// alongside process/Go runtime metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		framesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsplay_frames_decoded_total",
			Help: "Total number of video frames successfully decoded.",
		}),
		audioUnderflow: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsplay_audio_underflow_total",
			Help: "Total number of times audio decode underflowed mid-playback.",
		}),
		resyncTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsplay_resync_total",
			Help: "Total number of transport-stream resync events.",
		}),
		avLagSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tsplay_av_lag_seconds",
			Help: "Most recently observed audio/video lag, in seconds.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.framesDecoded, m.audioUnderflow, m.resyncTotal, m.avLagSeconds)
	}
	return m
}

func (m *Metrics) incFramesDecoded() {
	if m != nil {
		m.framesDecoded.Inc()
	}
}

func (m *Metrics) incAudioUnderflow() {
	if m != nil {
		m.audioUnderflow.Inc()
	}
}

func (m *Metrics) incResync() {
	if m != nil {
		m.resyncTotal.Inc()
	}
}

func (m *Metrics) observeAVLag(seconds float64) {
	if m != nil {
		m.avLagSeconds.Set(seconds)
	}
}
