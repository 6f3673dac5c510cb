package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/satriahrh/suara/domain/entities"
)

const (
	pcmBitDepth    = 16
	pcmAudioFormat = 1 // WAVE_FORMAT_PCM
	maxInt16       = 32767
)

// WriteWAV writes buffer as 16-bit PCM mono WAV at the buffer's sample rate
func WriteWAV(w io.WriteSeeker, buffer entities.AudioBuffer) error {
	if buffer.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", buffer.SampleRate)
	}

	encoder := wav.NewEncoder(w, buffer.SampleRate, pcmBitDepth, 1, pcmAudioFormat)
	intBuffer := &goaudio.IntBuffer{
		Data:           floatToPCM16(buffer.Samples),
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: buffer.SampleRate},
		SourceBitDepth: pcmBitDepth,
	}

	if err := encoder.Write(intBuffer); err != nil {
		return fmt.Errorf("failed to encode wav: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav: %w", err)
	}

	return nil
}

// SaveWAV writes buffer to path, creating parent directories, and returns the path
func SaveWAV(path string, buffer entities.AudioBuffer) (string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteWAV(f, buffer); err != nil {
		return "", err
	}

	return path, nil
}

// EncodeWAV returns buffer as an in-memory WAV payload
func EncodeWAV(buffer entities.AudioBuffer) ([]byte, error) {
	ws := &writeSeeker{}
	if err := WriteWAV(ws, buffer); err != nil {
		return nil, err
	}
	return ws.buf, nil
}

// ReadWAV decodes a PCM WAV stream into a mono float buffer at its native rate.
// Multi-channel input is downmixed by averaging.
func ReadWAV(r io.ReadSeeker) (entities.AudioBuffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return entities.AudioBuffer{}, errors.New("not a valid wav file")
	}

	intBuffer, err := decoder.FullPCMBuffer()
	if err != nil {
		return entities.AudioBuffer{}, fmt.Errorf("failed to decode wav: %w", err)
	}

	if decoder.BitDepth == 0 {
		return entities.AudioBuffer{}, errors.New("wav file reports zero bit depth")
	}

	channels := int(decoder.NumChans)
	if channels <= 0 {
		channels = 1
	}

	scale := float32(int64(1) << (decoder.BitDepth - 1))
	if decoder.BitDepth == 8 {
		// 8-bit PCM is unsigned
		for i, v := range intBuffer.Data {
			intBuffer.Data[i] = v - 128
		}
	}

	frames := len(intBuffer.Data) / channels
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(intBuffer.Data[i*channels+c]) / scale
		}
		samples[i] = sum / float32(channels)
	}

	return entities.NewAudioBuffer(samples, int(decoder.SampleRate)), nil
}

// DecodeWAV decodes an in-memory WAV payload
func DecodeWAV(data []byte) (entities.AudioBuffer, error) {
	return ReadWAV(bytes.NewReader(data))
}

// LoadWAV reads a WAV file and normalizes it to mono at sampleRate
func LoadWAV(path string, sampleRate int) (entities.AudioBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return entities.AudioBuffer{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	buffer, err := ReadWAV(f)
	if err != nil {
		return entities.AudioBuffer{}, fmt.Errorf("%s: %w", path, err)
	}

	return Resample(buffer, sampleRate)
}

func floatToPCM16(samples []float32) []int {
	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * maxInt16)
	}
	return data
}

// writeSeeker is an in-memory io.WriteSeeker for the wav encoder, which
// seeks back to patch the RIFF header sizes.
type writeSeeker struct {
	buf []byte
	pos int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	end := w.pos + len(p)
	if end > len(w.buf) {
		w.buf = append(w.buf, make([]byte, end-len(w.buf))...)
	}
	copy(w.buf[w.pos:], p)
	w.pos = end
	return len(p), nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(w.pos) + offset
	case io.SeekEnd:
		abs = int64(len(w.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	w.pos = int(abs)
	return abs, nil
}
