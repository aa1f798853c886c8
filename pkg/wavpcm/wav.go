// Package wavpcm wraps raw recorder PCM in a WAV container. Only the
// recorder's format is supported: 16 kHz, mono, signed 16-bit little-endian.
package wavpcm

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"go.uber.org/zap"

	"github.com/sdmic/micdump/pkg/binfile"
)

const (
	// Recorder output format.
	SampleRate  = 16000
	NumChannels = 1
	BitDepth    = 16

	// pcmFormat is the WAVE_FORMAT_PCM tag, i.e. no compression.
	pcmFormat = 1

	// Extension is appended to the input name when no output is given.
	Extension = ".wav"
)

// Wrapper writes WAV files.
type Wrapper struct {
	log    logging.Logger
	atomic bool
}

// NewWrapper creates a Wrapper. A nil log disables logging.
func NewWrapper(log logging.Logger, atomic bool) *Wrapper {
	if log == nil {
		log = logging.NoLog{}
	}
	return &Wrapper{log: log, atomic: atomic}
}

// Encode writes pcm to w as a complete WAV file. A trailing odd byte cannot
// form a sample and is dropped.
func (wr *Wrapper) Encode(w io.WriteSeeker, pcm []byte) error {
	if len(pcm)%2 != 0 {
		wr.log.Warn("dropping trailing odd byte",
			zap.Int("bytes", len(pcm)),
		)
		pcm = pcm[:len(pcm)-1]
	}

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}

	enc := wav.NewEncoder(w, SampleRate, BitDepth, NumChannels, pcmFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: NumChannels,
			SampleRate:  SampleRate,
		},
		Data:           samples,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav header: %w", err)
	}
	return nil
}

// OutputPath returns the default output for pcmPath: the same name with
// Extension appended.
func OutputPath(pcmPath string) string {
	return pcmPath + Extension
}

// WrapFile reads raw PCM from pcmPath and writes it as WAV to outPath, or to
// OutputPath(pcmPath) when outPath is empty. It returns the path written.
func (wr *Wrapper) WrapFile(pcmPath, outPath string) (string, error) {
	if outPath == "" {
		outPath = OutputPath(pcmPath)
	}

	pcm, err := os.ReadFile(pcmPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", pcmPath, err)
	}

	err = binfile.WriteSeekable(outPath, func(w io.WriteSeeker) error {
		return wr.Encode(w, pcm)
	}, binfile.WithAtomic(wr.atomic))
	if err != nil {
		return "", err
	}

	wr.log.Debug("wrapped pcm",
		zap.String("input", pcmPath),
		zap.String("output", outPath),
		zap.Int("samples", len(pcm)/2),
	)
	return outPath, nil
}
