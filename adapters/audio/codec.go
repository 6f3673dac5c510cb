package audio

import (
	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
)

// WAVCodec is the 16-bit PCM mono WAV codec used for recordings and engine payloads
type WAVCodec struct{}

var _ repositories.AudioCodec = WAVCodec{}

func (WAVCodec) Encode(buffer entities.AudioBuffer) ([]byte, error) {
	return EncodeWAV(buffer)
}

func (WAVCodec) Load(path string, sampleRate int) (entities.AudioBuffer, error) {
	return LoadWAV(path, sampleRate)
}

func (WAVCodec) Save(path string, buffer entities.AudioBuffer) (string, error) {
	return SaveWAV(path, buffer)
}
