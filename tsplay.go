package tsplay

import (
	"github.com/rs/zerolog/log"

	"github.com/deepteams/tsplay/player"
	"github.com/deepteams/tsplay/player/source"
)

// Open constructs a Player reading a local .ts file at path, using
// player.DefaultConfig() tuning. Pass follow=true to keep watching the
// file for further writes (a growing capture) instead of treating end
// of file as the end of the stream.
//
// This is a convenience wrapper over player.New + source.NewFileSource
// for the common case; embedders that need a WebSocket or HTTP source,
// or non-default Config, should call player.New directly.
func Open(path string, follow bool, renderer player.Renderer, audioOut player.AudioOutput) (*player.Player, error) {
	src := source.NewFileSource(path, follow, log.Logger)
	return player.New(player.DefaultConfig(), src, renderer, audioOut, nil)
}

// New constructs a Player from an already-built Source, using
// player.DefaultConfig() tuning and no metrics collector. It exists as
// a short path for the common case; use player.New directly for
// metrics or non-default Config.
func New(src player.Source, renderer player.Renderer, audioOut player.AudioOutput) (*player.Player, error) {
	return player.New(player.DefaultConfig(), src, renderer, audioOut, nil)
}
