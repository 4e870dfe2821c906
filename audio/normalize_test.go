package audio_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/polyglot-labs/interpreter/audio"
)

// buildWAV assembles a minimal RIFF/WAVE buffer with a 16-bit PCM fmt chunk
// and the given samples.
func buildWAV(samples []int16, format, bits uint16) []byte {
	dataLen := len(samples) * 2
	buf := make([]byte, 0, 44+dataLen)

	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+dataLen))
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, format)
	buf = binary.LittleEndian.AppendUint16(buf, 1)      // channels
	buf = binary.LittleEndian.AppendUint32(buf, 16000)  // sample rate
	buf = binary.LittleEndian.AppendUint32(buf, 32000)  // byte rate
	buf = binary.LittleEndian.AppendUint16(buf, 2)      // block align
	buf = binary.LittleEndian.AppendUint16(buf, bits)

	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(dataLen))
	for _, s := range samples {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(s))
	}
	return buf
}

func samplesOf(wav []byte) []int16 {
	// data chunk starts at 44 in buffers built by buildWAV
	raw := wav[44:]
	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return out
}

func TestNormalize_BoostsQuietAudio(t *testing.T) {
	wav := buildWAV([]int16{100, -1000, 500, 0}, 1, 16)

	out, err := audio.Normalize(wav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	peak := 0
	for _, s := range samplesOf(out) {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	if peak < 29480 || peak > 29500 {
		t.Errorf("got peak %d, want ~29490", peak)
	}

	// Relative shape preserved: the loudest sample is still index 1.
	got := samplesOf(out)
	if got[1] >= 0 || got[0] <= 0 {
		t.Errorf("sample signs not preserved: %v", got)
	}

	// Input untouched.
	if in := samplesOf(wav); in[1] != -1000 {
		t.Errorf("input buffer was modified: %v", in)
	}
}

func TestNormalize_LoudAudioUnchanged(t *testing.T) {
	wav := buildWAV([]int16{32000, -31000}, 1, 16)

	out, err := audio.Normalize(wav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if &out[0] != &wav[0] {
		t.Error("loud audio should pass through without copying")
	}
}

func TestNormalize_SilenceUnchanged(t *testing.T) {
	wav := buildWAV([]int16{0, 0, 0}, 1, 16)

	out, err := audio.Normalize(wav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range samplesOf(out) {
		if s != 0 {
			t.Errorf("silence was modified: %v", samplesOf(out))
			break
		}
	}
}

func TestNormalize_InvalidData(t *testing.T) {
	tests := []struct {
		name string
		wav  []byte
	}{
		{"empty", nil},
		{"not riff", []byte("this is not audio at all, just text")},
		{"truncated header", []byte("RIFF")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := audio.Normalize(tt.wav)
			if !errors.Is(err, audio.ErrInvalidWAV) {
				t.Fatalf("got err %v, want ErrInvalidWAV", err)
			}
		})
	}
}

func TestNormalize_TruncatedChunk(t *testing.T) {
	wav := buildWAV([]int16{100, 200}, 1, 16)
	_, err := audio.Normalize(wav[:len(wav)-1])
	if !errors.Is(err, audio.ErrInvalidWAV) {
		t.Fatalf("got err %v, want ErrInvalidWAV", err)
	}
}

func TestNormalize_UnsupportedFormat(t *testing.T) {
	tests := []struct {
		name   string
		format uint16
		bits   uint16
	}{
		{"8-bit samples", 1, 8},
		{"ieee float", 3, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wav := buildWAV([]int16{100}, tt.format, tt.bits)
			_, err := audio.Normalize(wav)
			if !errors.Is(err, audio.ErrUnsupportedFormat) {
				t.Fatalf("got err %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}
