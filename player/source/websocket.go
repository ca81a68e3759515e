// Package source provides the reference Source implementations §6
// calls out: a WebSocket streaming source, an fsnotify-based
// growing-file source, and a chunked-HTTP progressive source. The
// player core only depends on the player.Source interface — these are
// concrete collaborators, not part of the decode pipeline.
package source

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/deepteams/tsplay/player"
)

// WebSocketSource reads a raw byte stream from a WebSocket connection,
// reconnecting on drop with a configurable interval, per §6 "For
// WebSocket, reconnection is attempted with configurable interval
// (default 5s)".
type WebSocketSource struct {
	URL                 string
	ReconnectInterval    time.Duration
	Log                  zerolog.Logger

	mu          sync.Mutex
	dest        player.SourceDestination
	conn        *websocket.Conn
	established bool
	completed   bool
	stopCh      chan struct{}
}

// NewWebSocketSource creates a source for url with the §6 default
// reconnect interval; set ReconnectInterval after construction to
// override it.
func NewWebSocketSource(url string, log zerolog.Logger) *WebSocketSource {
	return &WebSocketSource{URL: url, ReconnectInterval: 5 * time.Second, Log: log, stopCh: make(chan struct{})}
}

func (s *WebSocketSource) Connect(dest player.SourceDestination) {
	s.mu.Lock()
	s.dest = dest
	s.mu.Unlock()
}

func (s *WebSocketSource) Start() error {
	go s.run()
	return nil
}

func (s *WebSocketSource) run() {
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}
		conn, _, err := websocket.DefaultDialer.Dial(s.URL, nil)
		if err != nil {
			s.Log.Warn().Err(err).Str("url", s.URL).Msg("websocket dial failed, retrying")
			select {
			case <-time.After(s.ReconnectInterval):
				continue
			case <-s.stopCh:
				return
			}
		}
		s.mu.Lock()
		s.conn = conn
		s.established = true
		s.mu.Unlock()

		s.readLoop(conn)

		s.mu.Lock()
		s.established = false
		s.mu.Unlock()

		select {
		case <-time.After(s.ReconnectInterval):
		case <-s.stopCh:
			return
		}
	}
}

func (s *WebSocketSource) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.Log.Debug().Err(err).Msg("websocket read ended")
			return
		}
		s.mu.Lock()
		dest := s.dest
		s.mu.Unlock()
		if dest != nil {
			if err := dest.Write(data); err != nil {
				s.Log.Warn().Err(err).Msg("websocket payload rejected by demuxer")
			}
		}
	}
}

func (s *WebSocketSource) Resume(headroomSeconds float64) {
	// WebSocket delivery is push-based; the server decides the rate. A
	// negative headroom is logged so an operator can see the player
	// falling behind a fire-hose source.
	if headroomSeconds < 0 {
		s.Log.Debug().Float64("headroom", headroomSeconds).Msg("consumer behind websocket source")
	}
}

func (s *WebSocketSource) Destroy() {
	close(s.stopCh)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

func (s *WebSocketSource) Established() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.established
}

func (s *WebSocketSource) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

func (s *WebSocketSource) Progress() float64 {
	if s.Established() {
		return 1
	}
	return 0
}
