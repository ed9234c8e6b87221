// ABOUTME: Decimation session implementation
// ABOUTME: Derives step/shift parameters and emits fixed-duration PCM chunks
package decimate

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/UVC-Bridge/uvcbridge-go/pkg/audio"
)

var (
	// ErrZeroRate means the destination format was never negotiated.
	ErrZeroRate = errors.New("destination sample rate is zero")

	// ErrZeroStep means the destination rate exceeds the source rate, so
	// integer truncation would select no source samples at all.
	ErrZeroStep = errors.New("destination rate above source rate yields zero step")

	// ErrDepth means the requested requantization cannot be expressed as a
	// right shift of the source samples.
	ErrDepth = errors.New("unsupported destination bit depth")
)

// Params holds the derived conversion parameters.
type Params struct {
	Step  int // source samples skipped per output sample
	Shift int // arithmetic right shift per sample
}

// Derive computes decimation parameters for converting src-format samples
// into dst-format samples. The destination rate must be at most the source
// rate and the destination depth must be 8 or 16 bits, at most the source
// depth.
func Derive(src, dst audio.Format) (Params, error) {
	if dst.SampleRate == 0 {
		return Params{}, ErrZeroRate
	}

	step := src.SampleRate / dst.SampleRate
	if step == 0 {
		return Params{}, fmt.Errorf("%w: %dHz -> %dHz", ErrZeroStep, src.SampleRate, dst.SampleRate)
	}

	if dst.BitDepth != 8 && dst.BitDepth != 16 {
		return Params{}, fmt.Errorf("%w: %d", ErrDepth, dst.BitDepth)
	}

	shift := src.BitDepth - dst.BitDepth
	if shift < 0 {
		return Params{}, fmt.Errorf("%w: %d exceeds source depth %d", ErrDepth, dst.BitDepth, src.BitDepth)
	}

	return Params{Step: step, Shift: shift}, nil
}

// Session streams one pass over a source waveform, emitting chunks sized
// for a fixed playback duration at the destination format.
type Session struct {
	src    []int16
	params Params

	samplesPerChunk int
	bytesPerSample  int
	cursor          int

	buf []byte // reused between chunks; aliased by NextChunk results
}

// NewSession creates a playback session over src, which must be in the
// fixed source format. Chunk sizing follows
// chunkBytes = ms * (dstBits/8) * (dstRate/1000).
func NewSession(src []int16, srcFormat, dstFormat audio.Format, chunkDuration time.Duration) (*Session, error) {
	params, err := Derive(srcFormat, dstFormat)
	if err != nil {
		return nil, err
	}

	ms := int(chunkDuration / time.Millisecond)
	bytesPerSample := dstFormat.BytesPerSample()
	chunkBytes := ms * bytesPerSample * (dstFormat.SampleRate / 1000)
	if chunkBytes == 0 {
		return nil, fmt.Errorf("chunk duration %v too short for %s", chunkDuration, dstFormat)
	}

	return &Session{
		src:             src,
		params:          params,
		samplesPerChunk: chunkBytes / bytesPerSample,
		bytesPerSample:  bytesPerSample,
		buf:             make([]byte, chunkBytes),
	}, nil
}

// Params returns the derived conversion parameters.
func (s *Session) Params() Params {
	return s.params
}

// ChunkBytes returns the byte size of one output chunk.
func (s *Session) ChunkBytes() int {
	return len(s.buf)
}

// NextChunk produces the next output chunk. When the next chunk would read
// past the end of the source, the cursor resets to the start and NextChunk
// returns (nil, false); the caller is expected to hold playback for the
// silence gap before asking again. The returned slice is reused by the
// following call.
func (s *Session) NextChunk() ([]byte, bool) {
	if s.cursor+s.samplesPerChunk*s.params.Step > len(s.src) {
		s.cursor = 0
		return nil, false
	}

	for i := 0; i < s.samplesPerChunk; i++ {
		sample := s.src[s.cursor+i*s.params.Step] >> s.params.Shift
		switch s.bytesPerSample {
		case 1:
			s.buf[i] = byte(sample)
		default:
			binary.LittleEndian.PutUint16(s.buf[i*2:], uint16(sample))
		}
	}
	s.cursor += s.samplesPerChunk * s.params.Step

	return s.buf, true
}
