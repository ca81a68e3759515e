package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/deepteams/tsplay/internal/bitbuf"
	"github.com/deepteams/tsplay/internal/colorconv"
	"github.com/deepteams/tsplay/internal/mp2audio"
	"github.com/deepteams/tsplay/internal/mpeg1video"
	"github.com/deepteams/tsplay/internal/tsdemux"
)

const (
	decodeVideoStreamID = 0xE0
	decodeAudioStreamID = 0xC0
)

// runDecode drains a .ts file to completion, writing one PPM (P6) file
// per decoded video frame and a single interleaved 16-bit PCM WAV for
// the audio track.
func runDecode(args []string) error {
	fs := newFlagSet("decode")
	outDir := fs.String("out", ".", "output directory for frame_NNNNN.ppm and audio.wav")
	gray := fs.Bool("gray", false, "route frames through the grayscale diagnostic path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: tsplay decode [options] <input.ts>")
	}
	input := fs.Arg(0)

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	videoBuf := bitbuf.New(len(data)+1, bitbuf.Expand)
	audioBuf := bitbuf.New(len(data)+1, bitbuf.Expand)
	video := mpeg1video.New(videoBuf, true)
	audio := mp2audio.New(audioBuf, true)

	demux := tsdemux.New()
	demux.Connect(decodeVideoStreamID, videoPESSink{video})
	demux.Connect(decodeAudioStreamID, audioPESSink{audio})

	resyncs := 0
	demux.OnResync = func(ev tsdemux.ResyncEvent) { resyncs++ }

	if err := demux.Write(data); err != nil {
		return fmt.Errorf("demux: %w", err)
	}
	if resyncs > 0 {
		fmt.Fprintf(os.Stderr, "tsplay: resynced %d times while scanning %s\n", resyncs, input)
	}

	frameCount := 0
	for video.Decode() {
		f := video.LastFrame
		name := filepath.Join(*outDir, fmt.Sprintf("frame_%05d.ppm", frameCount))
		if err := writePPM(name, f, *gray); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		frameCount++
	}

	var left, right []float32
	sampleRate := 44100
	for audio.Decode() {
		f := audio.LastFrame
		sampleRate = f.SampleRate
		left = append(left, f.Left...)
		right = append(right, f.Right...)
	}
	wavPath := filepath.Join(*outDir, "audio.wav")
	if len(left) > 0 {
		if err := writeWAV(wavPath, sampleRate, left, right); err != nil {
			return fmt.Errorf("write %s: %w", wavPath, err)
		}
	}

	fmt.Fprintf(os.Stderr, "tsplay: decoded %d video frames, %d audio samples/channel\n", frameCount, len(left))
	return nil
}

// writePPM converts one decoded YUV420P frame to a binary PPM (P6),
// optionally routing it through colorconv.Gray first to exercise the
// otherwise player-unreachable grayscale diagnostic path.
func writePPM(path string, f *mpeg1video.Frame, gray bool) error {
	img := yuvToBGRX(f)
	if gray {
		img = colorconv.Gray(img)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	fmt.Fprintf(w, "P6\n%d %d\n255\n", f.Width, f.Height)
	row := make([]byte, f.Width*3)
	for y := 0; y < f.Height; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+f.Width*4]
		for x := 0; x < f.Width; x++ {
			row[x*3] = src[x*4+2]   // R
			row[x*3+1] = src[x*4+1] // G
			row[x*3+2] = src[x*4]   // B
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Flush()
}

// yuvToBGRX applies the BT.601 inverse of colorconv's forward matrix to
// turn a decoded YUV420P frame into a packed BGRX image, giving the CLI
// something to feed colorconv.Gray and to serialize as PPM. The forward
// conversion lives in colorconv because the spec only requires
// BGRX->YUV; this inverse is diagnostic-only CLI glue, not a package
// operation.
func yuvToBGRX(f *mpeg1video.Frame) *colorconv.BGRXImage {
	img := &colorconv.BGRXImage{Width: f.Width, Height: f.Height, Stride: f.Width * 4}
	img.Pix = make([]byte, img.Stride*f.Height)
	yStride := f.Width
	for y := 0; y < f.Height; y++ {
		cy := y / 2
		for x := 0; x < f.Width; x++ {
			cx := x / 2
			yy := float64(f.Y[y*yStride+x])
			cb := float64(f.Cb[cy*f.CStride+cx]) - 128
			cr := float64(f.Cr[cy*f.CStride+cx]) - 128

			r := yy + 1.402*cr
			g := yy - 0.344136*cb - 0.714136*cr
			b := yy + 1.772*cb

			off := y*img.Stride + x*4
			img.Pix[off] = clampByte(b)
			img.Pix[off+1] = clampByte(g)
			img.Pix[off+2] = clampByte(r)
			img.Pix[off+3] = 0xff
		}
	}
	return img
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(math.Round(v))
}

// writeWAV writes a 16-bit signed PCM WAV file, interleaving left/right
// if both channels are present, or mono if right is empty.
func writeWAV(path string, sampleRate int, left, right []float32) error {
	channels := 1
	if len(right) > 0 {
		channels = 2
	}
	numFrames := len(left)
	bytesPerSample := 2
	dataSize := numFrames * channels * bytesPerSample
	byteRate := sampleRate * channels * bytesPerSample
	blockAlign := channels * bytesPerSample

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	w.WriteString("RIFF")
	binary.Write(w, binary.LittleEndian, uint32(36+dataSize))
	w.WriteString("WAVE")
	w.WriteString("fmt ")
	binary.Write(w, binary.LittleEndian, uint32(16))
	binary.Write(w, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(w, binary.LittleEndian, uint16(channels))
	binary.Write(w, binary.LittleEndian, uint32(sampleRate))
	binary.Write(w, binary.LittleEndian, uint32(byteRate))
	binary.Write(w, binary.LittleEndian, uint16(blockAlign))
	binary.Write(w, binary.LittleEndian, uint16(16))
	w.WriteString("data")
	binary.Write(w, binary.LittleEndian, uint32(dataSize))

	for i := 0; i < numFrames; i++ {
		binary.Write(w, binary.LittleEndian, floatToPCM16(left[i]))
		if channels == 2 {
			binary.Write(w, binary.LittleEndian, floatToPCM16(right[i]))
		}
	}
	return w.Flush()
}

func floatToPCM16(v float32) int16 {
	s := float64(v) * 32767
	if s > 32767 {
		s = 32767
	}
	if s < -32768 {
		s = -32768
	}
	return int16(s)
}

type videoPESSink struct{ d *mpeg1video.Decoder }

func (v videoPESSink) WritePES(payload []byte, pts float64, hasPTS bool) {
	v.d.Write(payload, pts, hasPTS)
}

type audioPESSink struct{ d *mp2audio.Decoder }

func (a audioPESSink) WritePES(payload []byte, pts float64, hasPTS bool) {
	a.d.Write(payload, pts, hasPTS)
}
