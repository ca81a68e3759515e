// Package tsdemux parses MPEG-2 Transport Stream packets into per-PID PES
// payloads with presentation timestamps, and dispatches them to connected
// elementary-stream decoders.
package tsdemux

import (
	"errors"
)

const (
	packetSize = 188
	syncByte   = 0x47

	// Fixed stream ids this player wires, per spec §4.6/§6. A production
	// demuxer would resolve these from a PAT/PMT; this one fixes them,
	// matching the "MPEG-1 video on 0xE0, MPEG Audio Layer II on 0xC0"
	// wire format contract.
	videoStreamID = 0xE0
	audioStreamID = 0xC0
)

// ErrSyncLost names the lost-sync condition. Nothing in this package
// returns it: Write resyncs internally per §7 ("Transport desync") and
// reports each attempt through OnResync.
var ErrSyncLost = errors.New("tsdemux: sync byte missing")

// Destination receives complete, timestamped elementary-stream payloads.
type Destination interface {
	// WritePES hands the decoder one PES payload, concatenated in receive
	// order, along with its presentation timestamp in seconds. hasPTS is
	// false when the PES carried no PTS field.
	WritePES(payload []byte, pts float64, hasPTS bool)
}

// ResyncEvent is reported via Demuxer.OnResync, if set, every time the
// parser loses and re-establishes sync. It exists purely for telemetry
// (see SPEC_FULL.md §12 "Resync telemetry").
type ResyncEvent struct {
	ByteOffset int64
	Recovered  bool
}

// pesAccumulator tracks in-progress PES assembly for one destination PID,
// per §3 "PESAccumulator".
type pesAccumulator struct {
	dest         Destination
	totalLength  int // 0 if unknown (declared PES packet_length was 0)
	currentLen   int
	pts          float64
	hasPTS       bool
	slices       [][]byte
	open         bool
}

func (a *pesAccumulator) reset() {
	a.totalLength = 0
	a.currentLen = 0
	a.pts = 0
	a.hasPTS = false
	a.slices = a.slices[:0]
	a.open = false
}

func (a *pesAccumulator) append(b []byte) {
	a.slices = append(a.slices, b)
	a.currentLen += len(b)
}

func (a *pesAccumulator) flush() {
	if a.dest == nil || len(a.slices) == 0 {
		a.reset()
		return
	}
	var payload []byte
	if len(a.slices) == 1 {
		payload = a.slices[0]
	} else {
		payload = make([]byte, 0, a.currentLen)
		for _, s := range a.slices {
			payload = append(payload, s...)
		}
	}
	a.dest.WritePES(payload, a.pts, a.hasPTS)
	a.reset()
}

// Demuxer parses a byte stream of 188-byte TS packets and dispatches
// assembled PES payloads to connected decoders.
type Demuxer struct {
	// OnResync, if set, is invoked every time the packet loop resyncs.
	OnResync func(ResyncEvent)

	pidToStream map[uint16]int // PID -> logical stream (videoStreamID/audioStreamID)
	accum       map[int]*pesAccumulator

	leftover []byte // bytes after the last fully-parsed packet, carried to next Write

	currentTime float64 // seconds, most recently observed PTS
	startTime   float64
	haveStart   bool

	byteOffset int64 // total bytes fed to Write, for resync telemetry
}

// New creates a Demuxer with no destinations connected. PID-to-stream
// mappings are learned as PES headers are encountered (§4.2): the first
// payload-start packet on a PID records that PID's stream id byte.
func New() *Demuxer {
	return &Demuxer{
		pidToStream: make(map[uint16]int),
		accum:       make(map[int]*pesAccumulator),
	}
}

// Connect registers dest as the destination for the given logical stream id
// (0xE0 for video, 0xC0 for audio per §6). PES packets whose stream id byte
// matches streamID are routed to dest once their PID is learned from the
// first payload-start packet.
func (d *Demuxer) Connect(streamID int, dest Destination) {
	d.accum[streamID] = &pesAccumulator{dest: dest}
}

// CurrentTime returns the most recently observed PTS, in seconds.
func (d *Demuxer) CurrentTime() float64 { return d.currentTime }

// StartTime returns the first PTS observed across any stream, and whether
// one has been observed yet.
func (d *Demuxer) StartTime() (float64, bool) { return d.startTime, d.haveStart }

// Write parses as many complete 188-byte packets as are available in the
// concatenation of any carried-over leftover bytes and p, dispatching
// complete PES payloads to their connected destinations.
func (d *Demuxer) Write(p []byte) error {
	buf := p
	if len(d.leftover) > 0 {
		buf = append(d.leftover, p...)
		d.leftover = nil
	}

	for len(buf) >= packetSize {
		if buf[0] != syncByte {
			n, recovered := d.resync(buf)
			if d.OnResync != nil {
				d.OnResync(ResyncEvent{ByteOffset: d.byteOffset, Recovered: recovered})
			}
			buf = buf[n:]
			d.byteOffset += int64(n)
			continue
		}
		d.parsePacket(buf[:packetSize])
		buf = buf[packetSize:]
		d.byteOffset += packetSize
	}

	if len(buf) > 0 {
		d.leftover = append(d.leftover[:0], buf...)
	}
	return nil
}

// resync implements §4.2's resync algorithm: within the first 187 bytes,
// search for a 0x47 whose neighbors at +188, +376, +564, +752 are also
// 0x47. It requires at least six packet-lengths of buffered data to make
// that check meaningful; on failure (or insufficient data) it advances by
// 187 bytes, matching the "skip 187" fallback of §4.2/§7. Returns the
// number of bytes to advance and whether sync was recovered.
func (d *Demuxer) resync(buf []byte) (advance int, recovered bool) {
	const confirmPackets = 4
	need := packetSize * (confirmPackets + 2)
	if len(buf) >= need {
		for i := 0; i < packetSize-1; i++ {
			ok := true
			for k := 0; k <= confirmPackets; k++ {
				if buf[i+k*packetSize] != syncByte {
					ok = false
					break
				}
			}
			if ok {
				return i, true
			}
		}
	}
	if len(buf) < packetSize-1 {
		return len(buf), false
	}
	return packetSize - 1, false
}

// parsePacket parses one confirmed-synced 188-byte TS packet.
func (d *Demuxer) parsePacket(pkt []byte) {
	// byte 0 is the sync byte (already confirmed).
	b1 := pkt[1]
	b2 := pkt[2]
	payloadStart := b1&0x40 != 0
	pid := (uint16(b1&0x1F) << 8) | uint16(b2)
	b3 := pkt[3]
	afControl := (b3 >> 4) & 0x3
	payload := pkt[4:]

	streamID, known := d.pidToStream[pid]

	if payloadStart && known {
		if acc, ok := d.accum[streamID]; ok && acc.open {
			acc.flush()
		}
	}

	if afControl&0x2 != 0 {
		if len(payload) == 0 {
			return
		}
		afLen := int(payload[0])
		payload = payload[1:]
		if afLen > len(payload) {
			afLen = len(payload)
		}
		payload = payload[afLen:]
		if afControl&0x1 == 0 {
			// Adaptation field only, no payload: possible end-of-frame
			// padding signal for video (§4.2).
			if !payloadStart && known && streamID == videoStreamID {
				if acc, ok := d.accum[streamID]; ok && acc.open && acc.totalLength == 0 {
					acc.flush()
				}
			}
			return
		}
	}

	if payloadStart && looksLikePESStart(payload) {
		d.startPES(pid, payload)
		return
	}

	if known {
		if acc, ok := d.accum[streamID]; ok && acc.open {
			acc.append(payload)
			if acc.totalLength != 0 && acc.currentLen >= acc.totalLength {
				acc.flush()
			}
		}
	}
}

func looksLikePESStart(b []byte) bool {
	return len(b) >= 6 && b[0] == 0 && b[1] == 0 && b[2] == 1
}

// startPES parses a PES header beginning at payload[0:3]=00 00 01 and opens
// a new accumulator for the stream, per §4.2.
func (d *Demuxer) startPES(pid uint16, payload []byte) {
	streamID := int(payload[3])
	d.pidToStream[pid] = streamID

	acc, ok := d.accum[streamID]
	if !ok {
		return // not a stream we're wired to dispatch
	}

	packetLength := int(payload[4])<<8 | int(payload[5])
	// payload[6] is skipped (8 bits of flags we don't need).
	ptsDTSFlags := (payload[7] >> 6) & 0x3
	headerDataLength := int(payload[8])

	headerStart := 9
	pts := 0.0
	hasPTS := false
	if ptsDTSFlags&0x2 != 0 && len(payload) >= headerStart+5 {
		pts = parsePTS(payload[headerStart : headerStart+5])
		hasPTS = true
		d.currentTime = pts
		if !d.haveStart {
			d.startTime = pts
			d.haveStart = true
		}
	}

	bodyStart := 9 + headerDataLength
	if bodyStart > len(payload) {
		bodyStart = len(payload)
	}

	pesPayloadLen := 0
	if packetLength != 0 {
		pesPayloadLen = packetLength - headerDataLength - 3
		if pesPayloadLen < 0 {
			pesPayloadLen = 0
		}
	}

	acc.reset()
	acc.open = true
	acc.pts = pts
	acc.hasPTS = hasPTS
	acc.totalLength = pesPayloadLen

	if bodyStart < len(payload) {
		acc.append(payload[bodyStart:])
		if acc.totalLength != 0 && acc.currentLen >= acc.totalLength {
			acc.flush()
		}
	}
}

// parsePTS assembles the 33-bit Presentation Timestamp from its 5-byte,
// marker-bit-interspersed encoding and converts it to seconds (90 kHz
// clock), per §4.2/§9 ("Timestamps as doubles").
func parsePTS(b []byte) float64 {
	// Layout (5 bytes, 40 bits): skip 4, top3, marker, mid15, marker, low15, marker.
	var acc uint64
	acc = uint64(b[0]>>1) & 0x07
	acc = (acc << 15) | (uint64(b[1])<<7 | uint64(b[2])>>1)
	acc = (acc << 15) | (uint64(b[3])<<7 | uint64(b[4])>>1)
	return float64(acc) / 90000.0
}
