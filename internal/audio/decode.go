package audio

import (
	"encoding/binary"
	"math"
)

// bytesToSamples reads little-endian 16-bit signed samples. A trailing odd
// byte is ignored.
func bytesToSamples(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

// mulawToLinear converts an 8-bit G.711 μ-law sample to 16-bit linear PCM
func mulawToLinear(mulawByte byte) int16 {
	// μ-law bytes are stored inverted
	mulawByte = ^mulawByte

	sign := mulawByte & 0x80
	segment := int32((mulawByte >> 4) & 0x07)
	mantissa := int32(mulawByte & 0x0F)

	// 14-bit magnitude, scaled to the 16-bit range
	magnitude := ((mantissa << (segment + 1)) + (int32(33) << segment) - 33) << 2

	if sign != 0 {
		return int16(-magnitude)
	}
	return int16(magnitude)
}

// CalculateRMS calculates the root mean square (RMS) of audio samples
func CalculateRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, sample := range samples {
		sum += float64(sample) * float64(sample)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
