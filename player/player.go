// Package player implements the single-threaded, cooperatively-scheduled
// tick loop that ties a Source, TSDemuxer, MPEG-1 video decoder, MP2
// audio decoder, Renderer, and AudioOutput together, per §4.6 of the
// governing specification. Following the teacher's encode.go Options
// shape, all tuning is a plain struct passed by the caller — there is no
// env/file config loader.
package player

import (
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/deepteams/tsplay/internal/bitbuf"
	"github.com/deepteams/tsplay/internal/clock"
	"github.com/deepteams/tsplay/internal/mp2audio"
	"github.com/deepteams/tsplay/internal/mpeg1video"
	"github.com/deepteams/tsplay/internal/tsdemux"
)

// videoStreamID and audioStreamID are the fixed PES stream ids this
// engine wires unconditionally (§4.6 "Wiring"; §12 supplement).
const (
	videoStreamID = 0xE0
	audioStreamID = 0xC0
)

// Source is the collaborator a Player pulls compressed bytes from (§6).
type Source interface {
	Connect(dest SourceDestination)
	Start() error
	Resume(headroomSeconds float64)
	Destroy()
	Established() bool
	Completed() bool
	Progress() float64
}

// SourceDestination receives raw bytes read by a Source, forwarding
// them to the demuxer.
type SourceDestination interface {
	Write(p []byte) error
}

// Renderer is the collaborator that displays decoded video planes (§6).
type Renderer interface {
	Render(y, cb, cr []byte, yStride, cStride, width, height int)
	RenderProgress(progress float64)
	Resize(w, h int)
}

// AudioOutput is the collaborator that plays decoded PCM (§6).
type AudioOutput interface {
	Play(sampleRate int, left, right []float32)
	Stop()
	EnqueuedTime() float64
	ResetEnqueuedTime()
	Enabled() bool
	Unlock()
}

// Config holds playback tuning options, with defaults matching §6.
type Config struct {
	Video            bool
	Audio            bool
	Streaming        bool
	Loop             bool
	Autoplay         bool
	MaxAudioLag      float64
	VideoBufferSize  int
	AudioBufferSize  int
	DecodeFirstFrame bool
	ChunkSize        int
}

// DefaultConfig returns the §6 option defaults.
func DefaultConfig() Config {
	return Config{
		Video:            true,
		Audio:            true,
		Streaming:        false,
		Loop:             true,
		Autoplay:         false,
		MaxAudioLag:      0.25,
		VideoBufferSize:  512 * 1024,
		AudioBufferSize:  128 * 1024,
		DecodeFirstFrame: true,
		ChunkSize:        1 << 20,
	}
}

// ErrNoSource is returned by New when cfg requires a source but none was
// given.
var ErrNoSource = errors.New("player: no source provided")

// Player is the cooperative scheduler described in §4.6. No method is
// safe to call concurrently with another (§5).
type Player struct {
	cfg    Config
	clock  clock.Clock
	source Source

	demux    *tsdemux.Demuxer
	video    *mpeg1video.Decoder
	audio    *mp2audio.Decoder
	renderer Renderer
	audioOut AudioOutput

	sessionID uuid.UUID
	log       zerolog.Logger
	metrics   *Metrics

	wantsToPlay bool
	playing     bool
	loop        bool

	startTime   float64
	decodedTime float64

	audioDisabled       bool
	lastVideoFrameTime  float64
}

// New constructs a Player wired per §4.6: a demuxer, a video decoder
// bound to stream id 0xE0 if cfg.Video, an audio decoder bound to
// 0xC0 if cfg.Audio, and the given Source/Renderer/AudioOutput
// collaborators.
func New(cfg Config, src Source, renderer Renderer, audioOut AudioOutput, metrics *Metrics) (*Player, error) {
	if src == nil {
		return nil, ErrNoSource
	}
	sessionID := uuid.New()

	mode := bitbuf.Expand
	if cfg.Streaming {
		mode = bitbuf.Evict
	}

	demux := tsdemux.New()

	p := &Player{
		cfg:       cfg,
		clock:     clock.NewSystemClock(),
		source:    src,
		demux:     demux,
		renderer:  renderer,
		audioOut:  audioOut,
		sessionID: sessionID,
		log:       log.With().Str("session", sessionID.String()).Logger(),
		metrics:   metrics,
		loop:      cfg.Loop,
	}

	if cfg.Video {
		videoBuf := bitbuf.New(cfg.VideoBufferSize, mode)
		p.video = mpeg1video.New(videoBuf, true)
		demux.Connect(videoStreamID, videoDestination{p})
	}
	if cfg.Audio {
		audioBuf := bitbuf.New(cfg.AudioBufferSize, mode)
		p.audio = mp2audio.New(audioBuf, true)
		demux.Connect(audioStreamID, audioDestination{p})
	}

	demux.OnResync = func(ev tsdemux.ResyncEvent) {
		p.metrics.incResync()
		p.log.Warn().Int64("byte_offset", ev.ByteOffset).Bool("recovered", ev.Recovered).Msg("ts resync")
	}

	p.wantsToPlay = cfg.Autoplay || cfg.Streaming
	src.Connect(demuxDestination{demux})
	return p, nil
}

type demuxDestination struct{ demux *tsdemux.Demuxer }

func (d demuxDestination) Write(p []byte) error { return d.demux.Write(p) }

type videoDestination struct{ p *Player }

func (v videoDestination) WritePES(payload []byte, pts float64, hasPTS bool) {
	v.p.video.Write(payload, pts, hasPTS)
}

type audioDestination struct{ p *Player }

func (a audioDestination) WritePES(payload []byte, pts float64, hasPTS bool) {
	a.p.audio.Write(payload, pts, hasPTS)
}

// Play marks the player as wanting to play; the next Tick establishes
// start_time once the source is ready.
func (p *Player) Play() error {
	p.wantsToPlay = true
	return p.source.Start()
}

// Pause cancels future ticks and stops audio immediately, then
// re-aligns to the reported current time (§5 "Cancellation").
func (p *Player) Pause() {
	p.wantsToPlay = false
	p.playing = false
	if p.audioOut != nil {
		p.audioOut.Stop()
	}
	p.Seek(p.CurrentTime())
}

// Destroy stops the source and then the audio output (§5); the decoders
// hold no resources that need releasing.
func (p *Player) Destroy() {
	p.source.Destroy()
	if p.audioOut != nil {
		p.audioOut.Stop()
	}
}

// CurrentTime returns the video (preferred) or audio decoder's current
// time, per §4.6's `currentTime` surface.
func (p *Player) CurrentTime() float64 {
	if p.video != nil && p.video.LastFrame != nil {
		return p.video.LastFrame.PTS
	}
	if p.audio != nil && p.audio.LastFrame != nil {
		return p.audio.LastFrame.PTS
	}
	return p.decodedTime
}

// Seek moves the video decoder's read position to the timestamp record
// for target and resets scheduling state, per §4.6 "Seek". The audio
// decoder keeps no timestamp map and is not repositioned.
func (p *Player) Seek(target float64) {
	if p.video != nil {
		if st, ok := p.demux.StartTime(); ok {
			p.video.Buf.SetReadBits(p.video.SeekTarget(target + st))
		}
	}
	p.decodedTime = target
	p.startTime = p.clock.Now() - target
}

// Tick runs one scheduling step, per §4.6 "Tick". Callers drive this
// from a frame-pacing callback (typically display refresh).
func (p *Player) Tick() {
	if !p.wantsToPlay {
		return
	}
	if !p.source.Established() {
		if p.renderer != nil {
			p.renderer.RenderProgress(p.source.Progress())
		}
		return
	}

	now := p.clock.Now()
	if !p.playing {
		p.startTime = now - p.CurrentTime()
		p.playing = true
	}

	if p.cfg.Streaming {
		p.tickStreaming(now)
	} else {
		p.tickFile(now)
	}
}

func (p *Player) tickStreaming(now float64) {
	if p.video != nil {
		p.decodeOneVideoFrame()
	}
	if p.audio != nil {
		for p.decodeOneAudioFrame() {
			if p.audioOut != nil && p.audioOut.EnqueuedTime() > p.cfg.MaxAudioLag {
				p.audioDisabled = true
				p.audioOut.ResetEnqueuedTime()
			}
		}
	}
	p.signalHeadroom(now)
}

func (p *Player) tickFile(now float64) {
	if p.audio != nil {
		for p.audio.LastFrame == nil || p.decodedAudioTime()-p.CurrentTime() < 0.25 {
			if !p.decodeOneAudioFrame() {
				if p.audio.LastFrame != nil {
					p.metrics.incAudioUnderflow()
				}
				break
			}
		}
		if p.video != nil && p.video.LastFrame != nil && p.video.LastFrame.PTS < p.decodedAudioTime() {
			p.decodeOneVideoFrame()
		} else if p.video != nil && p.video.LastFrame == nil {
			p.decodeOneVideoFrame()
		}
	} else if p.video != nil {
		target := (now - p.startTime) + p.lastVideoFrameTime
		late := target - p.CurrentTime()
		if late > 0 {
			p.decodeOneVideoFrame()
		}
		framePeriod := 1.0 / 30.0
		if late > 2*framePeriod {
			p.startTime += late
		}
	}
	p.signalHeadroom(now)

	if p.videoUnderflowed() && p.source.Completed() {
		if p.loop {
			p.Seek(0)
		} else {
			p.wantsToPlay = false
			p.playing = false
		}
	}
}

func (p *Player) decodedAudioTime() float64 {
	if p.audio != nil && p.audio.LastFrame != nil {
		return p.audio.LastFrame.PTS
	}
	return 0
}

func (p *Player) videoUnderflowed() bool {
	return p.video == nil || p.video.LastFrame == nil
}

func (p *Player) decodeOneVideoFrame() bool {
	if p.video == nil {
		return false
	}
	ok := p.video.Decode()
	if ok {
		p.lastVideoFrameTime = p.video.LastFrame.PTS
		p.metrics.incFramesDecoded()
		if p.renderer != nil {
			f := p.video.LastFrame
			p.renderer.Render(f.Y, f.Cb, f.Cr, f.Width, f.CStride, f.Width, f.Height)
		}
	}
	return ok
}

func (p *Player) decodeOneAudioFrame() bool {
	if p.audio == nil {
		return false
	}
	ok := p.audio.Decode()
	if ok && !p.audioDisabled && p.audioOut != nil && p.audioOut.Enabled() {
		f := p.audio.LastFrame
		p.audioOut.Play(f.SampleRate, f.Left, f.Right)
	}
	return ok
}

func (p *Player) signalHeadroom(now float64) {
	headroom := p.demux.CurrentTime() - p.CurrentTime()
	p.metrics.observeAVLag(p.demux.CurrentTime() - p.decodedAudioTime())
	p.source.Resume(headroom)
	_ = now
}

// SessionID returns the UUID this Player instance logs under.
func (p *Player) SessionID() uuid.UUID { return p.sessionID }
