// Package pcm implements spec.md §4.A: parsing RIFF/WAVE PCM into a mono
// float sample buffer, and the inverse encode used by the offline synth.
//
// Decoding is done with github.com/go-audio/wav rather than a hand-rolled
// RIFF chunk scanner: the library already demultiplexes 8/16/24-bit PCM and
// reports channel count and sample rate, which is exactly the surface
// spec.md §4.A needs (see SPEC_FULL.md §4.A and DESIGN.md).
package pcm

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cartomix/beatbox/internal/apperrors"
	"github.com/cartomix/beatbox/internal/model"
)

const stage = "pcm.Decode"

// supportedRates are the sample rates spec.md §6 Input A accepts.
var supportedRates = map[int]bool{22050: true, 44100: true, 48000: true}

// maxDurationSec bounds clip length per spec.md §3.
const maxDurationSec = 30.0

// Decode parses RIFF/WAVE PCM bytes into a mono float32 sample buffer
// clipped to [-1, 1]. Stereo input is downmixed by averaging channels.
func Decode(raw []byte) (model.SampleBuffer, error) {
	hash := apperrors.HashPCM(raw)

	if len(raw) < 44 {
		return model.SampleBuffer{}, apperrors.NewWithHash(stage, apperrors.Truncated, hash,
			"input shorter than a minimal RIFF/WAVE header", nil)
	}
	if !bytes.Equal(raw[0:4], []byte("RIFF")) || !bytes.Equal(raw[8:12], []byte("WAVE")) {
		return model.SampleBuffer{}, apperrors.NewWithHash(stage, apperrors.UnsupportedFormat, hash,
			"missing RIFF/WAVE magic", nil)
	}

	dec := wav.NewDecoder(bytes.NewReader(raw))
	if !dec.IsValidFile() {
		return model.SampleBuffer{}, apperrors.NewWithHash(stage, apperrors.ChunkMismatch, hash,
			"wav decoder rejected the file structure", nil)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return model.SampleBuffer{}, apperrors.NewWithHash(stage, apperrors.Truncated, hash,
			"failed reading PCM data chunk", err)
	}

	sampleRate := int(dec.SampleRate)
	if !supportedRates[sampleRate] {
		return model.SampleBuffer{}, apperrors.NewWithHash(stage, apperrors.UnsupportedFormat, hash,
			fmt.Sprintf("unsupported sample rate %d", sampleRate), nil)
	}

	numChans := int(dec.NumChans)
	if numChans != 1 && numChans != 2 {
		return model.SampleBuffer{}, apperrors.NewWithHash(stage, apperrors.UnsupportedFormat, hash,
			fmt.Sprintf("unsupported channel count %d", numChans), nil)
	}

	bitDepth := int(dec.BitDepth)
	fullScale := fullScaleFor(bitDepth)
	if fullScale == 0 {
		return model.SampleBuffer{}, apperrors.NewWithHash(stage, apperrors.UnsupportedFormat, hash,
			fmt.Sprintf("unsupported bit depth %d", bitDepth), nil)
	}

	samples := downmix(buf, numChans, fullScale)

	maxLen := int(maxDurationSec * float64(sampleRate))
	if len(samples) > maxLen {
		samples = samples[:maxLen]
	}

	durationMs := float64(len(samples)) * 1000.0 / float64(sampleRate)
	if durationMs < 100 {
		return model.SampleBuffer{}, apperrors.NewWithHash(stage, apperrors.TooShort, hash,
			fmt.Sprintf("decoded audio is only %.1fms, need at least 100ms", durationMs), nil)
	}

	return model.SampleBuffer{Samples: samples, SampleRate: sampleRate}, nil
}

// DecodeFile is a convenience wrapper for cmd/beatbox; the core's contract
// otherwise remains byte arrays in, byte arrays out.
func DecodeFile(path string) (model.SampleBuffer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.SampleBuffer{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(raw)
}

func fullScaleFor(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 128.0
	case 16:
		return 32768.0
	case 24:
		return 8388608.0
	default:
		return 0
	}
}

func downmix(buf *audio.IntBuffer, numChans int, fullScale float64) []float32 {
	data := buf.Data
	if numChans == 1 {
		out := make([]float32, len(data))
		for i, v := range data {
			out[i] = clip(float32(float64(v) / fullScale))
		}
		return out
	}

	frames := len(data) / numChans
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < numChans; c++ {
			sum += float64(data[i*numChans+c])
		}
		avg := sum / float64(numChans) / fullScale
		out[i] = clip(float32(avg))
	}
	return out
}

func clip(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
