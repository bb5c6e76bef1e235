package decode

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"

	"github.com/RyanBlaney/voice-detector/pkg/audio"
	"github.com/RyanBlaney/voice-detector/pkg/logging"
)

// Format is an encoded audio container
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatWAV Format = "wav"
)

// DefaultMinPayloadSize is the shortest base64 payload accepted
const DefaultMinPayloadSize = 100

// streamBufferSize is the number of beep frames pulled per Stream call
const streamBufferSize = 4096

// ParseFormat normalizes a format name or file extension
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "mp3", "mpeg", "audio/mpeg":
		return FormatMP3, nil
	case "wav", "wave", "audio/wav", "audio/x-wav":
		return FormatWAV, nil
	default:
		return "", NewDecodeError(Format(s), ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported audio format %q", s), nil)
	}
}

// Config controls decoder behaviour
type Config struct {
	MinPayloadSize int
	Logger         logging.Logger
}

// Decoder turns encoded audio into a mono Waveform
type Decoder struct {
	minPayloadSize int
	logger         logging.Logger
}

// NewDecoder creates a decoder
func NewDecoder(cfg *Config) *Decoder {
	d := &Decoder{minPayloadSize: DefaultMinPayloadSize}
	if cfg != nil {
		if cfg.MinPayloadSize > 0 {
			d.minPayloadSize = cfg.MinPayloadSize
		}
		d.logger = cfg.Logger
	}
	if d.logger == nil {
		d.logger = logging.WithFields(logging.Fields{})
	}
	d.logger = d.logger.WithFields(logging.Fields{"component": "audio_decoder"})
	return d
}

// DecodeBase64 decodes a base64 payload. A data URL prefix
// ("data:audio/mpeg;base64,") is stripped, as is embedded whitespace.
func (d *Decoder) DecodeBase64(ctx context.Context, payload string, format Format) (*audio.Waveform, error) {
	if i := strings.Index(payload, ","); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+1:]
	}
	payload = strings.Join(strings.Fields(payload), "")

	if len(payload) < d.minPayloadSize {
		return nil, NewDecodeError(format, ErrCodeInvalidPayload,
			fmt.Sprintf("payload too small: %d characters, need at least %d", len(payload), d.minPayloadSize), nil)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, NewDecodeError(format, ErrCodeInvalidPayload, "invalid base64 encoding", err)
	}

	return d.Decode(ctx, bytes.NewReader(raw), format)
}

// DecodeFile decodes a file, picking the format from its extension
func (d *Decoder) DecodeFile(ctx context.Context, path string) (*audio.Waveform, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDecodeError(format, ErrCodeDecoding, "failed to read audio file", err)
	}

	return d.Decode(ctx, bytes.NewReader(data), format)
}

// Decode reads all of r and decodes it as format
func (d *Decoder) Decode(ctx context.Context, r io.Reader, format Format) (*audio.Waveform, error) {
	var (
		wf  *audio.Waveform
		err error
	)

	switch format {
	case FormatMP3:
		wf, err = d.decodeMP3(ctx, r)
	case FormatWAV:
		wf, err = d.decodeWAV(ctx, r)
	default:
		return nil, NewDecodeError(format, ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported audio format %q", format), nil)
	}
	if err != nil {
		d.logger.Error(err, "Failed to decode audio", logging.Fields{"format": format})
		return nil, err
	}

	if wf.Len() == 0 {
		return nil, NewDecodeError(format, ErrCodeEmptyAudio, "decoded audio contains no samples", nil)
	}

	d.logger.Debug("Decoded audio", logging.Fields{
		"format":      format,
		"sample_rate": wf.SampleRate,
		"samples":     wf.Len(),
		"duration_s":  wf.Seconds(),
	})

	return wf, nil
}

func (d *Decoder) decodeMP3(ctx context.Context, r io.Reader) (*audio.Waveform, error) {
	rc, ok := r.(io.ReadCloser)
	if !ok {
		rc = io.NopCloser(r)
	}

	streamer, format, err := mp3.Decode(rc)
	if err != nil {
		return nil, NewDecodeError(FormatMP3, ErrCodeDecoding, "failed to open mp3 stream", err)
	}
	defer streamer.Close()

	samples, err := drainStreamer(ctx, streamer, format.NumChannels)
	if err != nil {
		return nil, NewDecodeError(FormatMP3, ErrCodeDecoding, "failed to read mp3 frames", err)
	}

	wf, err := audio.NewWaveform(samples, int(format.SampleRate))
	if err != nil {
		return nil, NewDecodeError(FormatMP3, ErrCodeDecoding, "invalid mp3 sample rate", err)
	}
	return wf, nil
}

// drainStreamer pulls every frame from a beep streamer and downmixes to mono
func drainStreamer(ctx context.Context, streamer beep.Streamer, numChannels int) ([]float64, error) {
	buf := make([][2]float64, streamBufferSize)
	var samples []float64

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, ok := streamer.Stream(buf)
		for _, frame := range buf[:n] {
			if numChannels >= 2 {
				samples = append(samples, (frame[0]+frame[1])/2)
			} else {
				samples = append(samples, frame[0])
			}
		}
		if !ok {
			break
		}
	}

	if err := streamer.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

func (d *Decoder) decodeWAV(ctx context.Context, r io.Reader) (*audio.Waveform, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, NewDecodeError(FormatWAV, ErrCodeDecoding, "failed to read wav data", err)
		}
		rs = bytes.NewReader(data)
	}

	decoder := wav.NewDecoder(rs)
	if !decoder.IsValidFile() {
		return nil, NewDecodeError(FormatWAV, ErrCodeDecoding, "invalid WAV file", errors.New("missing RIFF/WAVE header"))
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, NewDecodeError(FormatWAV, ErrCodeDecoding, "could not read PCM buffer", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(decoder.BitDepth)
	}

	samples, err := intBufferToFloat(buf, bitDepth)
	if err != nil {
		return nil, NewDecodeError(FormatWAV, ErrCodeDecoding, "unsupported PCM layout", err)
	}

	wf, err := audio.NewWaveform(audio.Mono(samples, buf.Format.NumChannels), buf.Format.SampleRate)
	if err != nil {
		return nil, NewDecodeError(FormatWAV, ErrCodeDecoding, "invalid wav sample rate", err)
	}
	return wf, nil
}

// intBufferToFloat scales integer PCM into [-1, 1]
func intBufferToFloat(buf *goaudio.IntBuffer, bitDepth int) ([]float64, error) {
	if buf == nil || buf.Format == nil {
		return nil, errors.New("missing PCM format")
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	var (
		scale  = float64(int64(1) << (bitDepth - 1))
		offset = 0.0
	)
	// 8-bit WAV is unsigned
	if bitDepth == 8 {
		offset = scale
	}

	out := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = (float64(v) - offset) / scale
	}
	return out, nil
}
