package audio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// Info describes a decoded MPEG payload.
type Info struct {
	SampleRate int
	Duration   time.Duration
}

// Inspect decodes an MPEG payload and reports its sample rate and duration.
// The relay never alters the payload itself; this is for logging and response
// metadata only.
func Inspect(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, fmt.Errorf("empty audio payload")
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decode mpeg: %w", err)
	}

	// Length reports decoded PCM bytes: 2 channels x 2 bytes per sample.
	samples := decoder.Length() / 4
	rate := decoder.SampleRate()
	if rate <= 0 {
		return Info{}, fmt.Errorf("invalid sample rate: %d", rate)
	}

	return Info{
		SampleRate: rate,
		Duration:   time.Duration(samples) * time.Second / time.Duration(rate),
	}, nil
}
