package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrNotWAV is returned when data does not start with a RIFF/WAVE header.
var ErrNotWAV = errors.New("not a RIFF/WAVE file")

// WAV audio format codes
const (
	FormatPCM        = 1
	FormatMulaw      = 7
	FormatExtensible = 0xFFFE
)

// WAVInfo describes the audio stream of a WAV file
type WAVInfo struct {
	AudioFormat   int
	Channels      int
	SampleRate    int
	BitsPerSample int
	DataOffset    int
	DataBytes     int

	// Duration is the playback length in seconds
	Duration float64
}

// ProbeWAV walks the RIFF chunks of data and reports the fmt and data chunk
// parameters. A data chunk that runs past the end of the buffer is clamped to
// what is present.
func ProbeWAV(data []byte) (*WAVInfo, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var info WAVInfo
	haveFmt := false
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(data) {
				return nil, fmt.Errorf("fmt chunk too short (%d bytes)", size)
			}
			info.AudioFormat = int(binary.LittleEndian.Uint16(data[body:]))
			info.Channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			info.SampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			info.BitsPerSample = int(binary.LittleEndian.Uint16(data[body+14:]))
			if info.AudioFormat == FormatExtensible && size >= 26 && body+26 <= len(data) {
				// sub-format GUID starts with the real format code
				info.AudioFormat = int(binary.LittleEndian.Uint16(data[body+24:]))
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, errors.New("data chunk before fmt chunk")
			}
			info.DataOffset = body
			info.DataBytes = min(size, len(data)-body)
			if info.Channels <= 0 || info.SampleRate <= 0 || info.BitsPerSample <= 0 {
				return nil, fmt.Errorf("invalid wav format: %d ch, %d Hz, %d bit",
					info.Channels, info.SampleRate, info.BitsPerSample)
			}
			bytesPerSecond := info.SampleRate * info.Channels * info.BitsPerSample / 8
			if bytesPerSecond == 0 {
				return nil, fmt.Errorf("invalid wav format: %d bit samples", info.BitsPerSample)
			}
			info.Duration = float64(info.DataBytes) / float64(bytesPerSecond)
			return &info, nil
		}

		// chunks are word aligned
		pos = body + size + size%2
	}

	if !haveFmt {
		return nil, errors.New("missing fmt chunk")
	}
	return nil, errors.New("missing data chunk")
}

// DecodeMono returns the data chunk as 16-bit mono samples. Multi-channel
// audio is averaged. Only 16-bit PCM, 8-bit PCM and μ-law are supported.
func DecodeMono(data []byte, info *WAVInfo) ([]int16, error) {
	pcm := data[info.DataOffset : info.DataOffset+info.DataBytes]

	var samples []int16
	switch {
	case info.AudioFormat == FormatPCM && info.BitsPerSample == 16:
		samples = bytesToSamples(pcm)
	case info.AudioFormat == FormatPCM && info.BitsPerSample == 8:
		samples = make([]int16, len(pcm))
		for i, b := range pcm {
			samples[i] = (int16(b) - 128) << 8
		}
	case info.AudioFormat == FormatMulaw && info.BitsPerSample == 8:
		samples = make([]int16, len(pcm))
		for i, b := range pcm {
			samples[i] = mulawToLinear(b)
		}
	default:
		return nil, fmt.Errorf("unsupported wav encoding: format %d, %d bit", info.AudioFormat, info.BitsPerSample)
	}

	return downmix(samples, info.Channels), nil
}

func downmix(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}
	mono := make([]int16, len(samples)/channels)
	for i := range mono {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += int(samples[i*channels+c])
		}
		mono[i] = int16(sum / channels)
	}
	return mono
}
