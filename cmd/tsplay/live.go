package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/deepteams/tsplay/player"
	"github.com/deepteams/tsplay/player/source"
)

// runLive drives player.Player against a real-time source: a local
// file (optionally followed as it grows), a ws:// stream, or an
// http(s):// progressive download. There is no video/audio
// presentation backend in this exercise (§13 Non-goals), so the
// Renderer/AudioOutput here only report progress and metrics; a real
// embedder supplies its own.
func runLive(args []string) error {
	fs := newFlagSet("live")
	follow := fs.Bool("f", false, "follow a growing local file instead of treating it as complete")
	streaming := fs.Bool("streaming", false, "use the live-streaming scheduling path instead of file playback")
	metricsAddr := fs.String("metrics-addr", "", "if set, serve Prometheus metrics at this address under /metrics")
	maxAudioLag := fs.Float64("max-audio-lag", player.DefaultConfig().MaxAudioLag, "seconds of audio lag tolerated before audio is disabled")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: tsplay live [options] <source>")
	}
	target := fs.Arg(0)

	// reg stays a nil prometheus.Registerer (not a typed-nil *Registry)
	// when -metrics-addr is unset, so player.NewMetrics's `reg != nil`
	// check actually skips registration instead of panicking on a nil
	// receiver.
	var reg prometheus.Registerer
	if *metricsAddr != "" {
		concrete := prometheus.NewRegistry()
		reg = concrete
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(concrete, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		fmt.Fprintf(os.Stderr, "tsplay: metrics on http://%s/metrics\n", *metricsAddr)
	}
	metrics := player.NewMetrics(reg)

	src, err := openSource(target, *follow)
	if err != nil {
		return err
	}

	cfg := player.DefaultConfig()
	cfg.Streaming = *streaming
	cfg.Autoplay = true
	cfg.MaxAudioLag = *maxAudioLag

	renderer := &progressRenderer{}
	p, err := player.New(cfg, src, renderer, nopAudioOutput{}, metrics)
	if err != nil {
		return err
	}

	if err := p.Play(); err != nil {
		return fmt.Errorf("play: %w", err)
	}

	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		p.Tick()
		if src.Completed() && !cfg.Loop {
			break
		}
	}
	p.Destroy()
	return nil
}

// openSource picks a concrete Source implementation from target's
// scheme: ws(s):// for WebSocketSource, http(s):// for HTTPSource,
// anything else is treated as a local file path.
func openSource(target string, follow bool) (player.Source, error) {
	logger := log.With().Str("source", target).Logger()
	switch {
	case strings.HasPrefix(target, "ws://"), strings.HasPrefix(target, "wss://"):
		return source.NewWebSocketSource(target, logger), nil
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return source.NewHTTPSource(target, 0, logger), nil
	default:
		if _, err := os.Stat(target); err != nil {
			return nil, err
		}
		return source.NewFileSource(target, follow, logger), nil
	}
}

// progressRenderer stands in for a real video sink: it has nowhere to
// present frames in this exercise (§13 Non-goals), so it only logs
// coarse progress.
type progressRenderer struct {
	lastWidth, lastHeight int
}

func (r *progressRenderer) Render(y, cb, cr []byte, yStride, cStride, width, height int) {}

func (r *progressRenderer) RenderProgress(progress float64) {}

func (r *progressRenderer) Resize(w, h int) {
	r.lastWidth, r.lastHeight = w, h
}

// nopAudioOutput discards decoded PCM; §13 excludes real audio output
// from this exercise's scope.
type nopAudioOutput struct{}

func (nopAudioOutput) Play(sampleRate int, left, right []float32) {}
func (nopAudioOutput) Stop()                                      {}
func (nopAudioOutput) EnqueuedTime() float64                       { return 0 }
func (nopAudioOutput) ResetEnqueuedTime()                          {}
func (nopAudioOutput) Enabled() bool                               { return false }
func (nopAudioOutput) Unlock()                                     {}
