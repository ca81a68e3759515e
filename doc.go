// Package tsplay provides a pure Go MPEG transport-stream playback engine:
// demuxing, MPEG-1 video decoding, MPEG Audio Layer II decoding, and
// BGRX->YUV color conversion, tied together by a cooperative
// single-threaded player scheduler.
//
// The package supports:
//   - Progressive transport-stream demuxing with PID-based PES reassembly
//   - MPEG-1 video decoding (I and P pictures, motion compensation, IDCT;
//     B and D pictures are skipped)
//   - MPEG Audio Layer II decoding (bit allocation, polyphase synthesis)
//   - BGRX to YUV420P/NV12 color conversion with optional scaling
//   - A Player scheduler that ties a Source, the decoders, and a
//     Renderer/AudioOutput pair together into a single Tick() call
//
// Basic usage for driving a file-backed player:
//
//	src := source.NewFileSource("movie.ts", false, log.Logger)
//	p, err := player.New(player.DefaultConfig(), src, renderer, audioOut, nil)
//	p.Play()
//	for range ticker.C {
//		p.Tick()
//	}
package tsplay
