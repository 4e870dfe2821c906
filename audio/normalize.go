// Package audio prepares captured audio for transcription.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidWAV reports data that is not a well-formed RIFF/WAVE buffer.
	ErrInvalidWAV = errors.New("audio: invalid wav data")
	// ErrUnsupportedFormat reports WAV data that is not 16-bit PCM.
	ErrUnsupportedFormat = errors.New("audio: unsupported wav format")
)

// targetPeak is roughly 0.9 of 16-bit full scale, leaving headroom so
// normalization never clips.
const targetPeak = 29490

// Normalize applies peak gain to a 16-bit PCM WAV buffer: quiet phone
// captures transcribe noticeably better after a boost. Audio already at or
// above the target peak, and silent audio, pass through unchanged. The
// input buffer is never modified.
func Normalize(wav []byte) ([]byte, error) {
	dataOff, dataLen, err := pcmDataRange(wav)
	if err != nil {
		return nil, err
	}

	peak := 0
	for i := dataOff; i < dataOff+dataLen; i += 2 {
		v := int(int16(binary.LittleEndian.Uint16(wav[i:])))
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	if peak == 0 || peak >= targetPeak {
		return wav, nil
	}

	out := make([]byte, len(wav))
	copy(out, wav)

	scale := float64(targetPeak) / float64(peak)
	for i := dataOff; i < dataOff+dataLen; i += 2 {
		v := math.Round(float64(int16(binary.LittleEndian.Uint16(wav[i:]))) * scale)
		if v > math.MaxInt16 {
			v = math.MaxInt16
		} else if v < math.MinInt16 {
			v = math.MinInt16
		}
		binary.LittleEndian.PutUint16(out[i:], uint16(int16(v)))
	}
	return out, nil
}

// pcmDataRange walks the RIFF chunk list, validates the format chunk is
// 16-bit PCM, and returns the offset and length of the sample data.
func pcmDataRange(wav []byte) (int, int, error) {
	if len(wav) < 12 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return 0, 0, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidWAV)
	}

	var fmtSeen bool
	var dataOff, dataLen int

	off := 12
	for off+8 <= len(wav) {
		id := string(wav[off : off+4])
		size := int(binary.LittleEndian.Uint32(wav[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(wav) {
			return 0, 0, fmt.Errorf("%w: chunk %q overruns buffer", ErrInvalidWAV, id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return 0, 0, fmt.Errorf("%w: short fmt chunk", ErrInvalidWAV)
			}
			format := binary.LittleEndian.Uint16(wav[body:])
			bits := binary.LittleEndian.Uint16(wav[body+14:])
			if format != 1 || bits != 16 {
				return 0, 0, fmt.Errorf("%w: format %d, %d-bit samples", ErrUnsupportedFormat, format, bits)
			}
			fmtSeen = true
		case "data":
			dataOff, dataLen = body, size
		}

		// Chunks are word-aligned.
		off = body + size + size%2
	}

	if !fmtSeen || dataLen == 0 {
		return 0, 0, fmt.Errorf("%w: missing fmt or data chunk", ErrInvalidWAV)
	}
	if dataLen%2 != 0 {
		return 0, 0, fmt.Errorf("%w: odd data length for 16-bit samples", ErrInvalidWAV)
	}
	return dataOff, dataLen, nil
}
