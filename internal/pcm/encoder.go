package pcm

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Encode16 renders mono float32 samples in [-1, 1] to a 16-bit PCM WAV
// byte slice at the given sample rate (spec.md §4.I output format).
//
// go-audio/wav.Encoder wants an io.WriteSeeker (it back-patches chunk sizes
// on Close), so this writes to a temporary file and reads the bytes back;
// the public contract stays byte-array-in, byte-array-out per spec.md §1.
func Encode16(samples []float32, sampleRate int) ([]byte, error) {
	tmp, err := os.CreateTemp("", "beatbox-render-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp wav: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := wav.NewEncoder(tmp, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(clip(s) * 32767)
	}

	if err := enc.Write(buf); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("read back temp wav: %w", err)
	}
	return data, nil
}
