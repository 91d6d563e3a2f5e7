package audio

import (
	"testing"
)

func constantFrame(n int, amplitude int16) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = amplitude
	}
	return samples
}

func TestVADDetector_ProcessFrame_Speech(t *testing.T) {
	vad := NewVADDetector(&VADConfig{EnergyThreshold: 500.0, SilenceFrames: 10, FrameMillis: 20})
	samples := constantFrame(160, 5000)

	for i := 0; i < 5; i++ {
		isSpeaking, speechStarted, _ := vad.ProcessFrame(samples)
		if !isSpeaking {
			t.Errorf("Expected speech detection on frame %d", i)
		}
		if i == 0 && !speechStarted {
			t.Error("Expected speech to start on first frame")
		}
		if i > 0 && speechStarted {
			t.Errorf("Expected speech start only once, got it on frame %d", i)
		}
	}
}

func TestVADDetector_ProcessFrame_Silence(t *testing.T) {
	vad := NewVADDetector(nil)
	samples := constantFrame(160, 10)

	for i := 0; i < 15; i++ {
		if isSpeaking, _, _ := vad.ProcessFrame(samples); isSpeaking {
			t.Errorf("Expected silence on frame %d", i)
		}
	}
}

func TestVADDetector_ProcessFrame_SpeechToSilence(t *testing.T) {
	vad := NewVADDetector(&VADConfig{EnergyThreshold: 500.0, SilenceFrames: 3, FrameMillis: 20})

	vad.ProcessFrame(constantFrame(160, 5000))
	silence := constantFrame(160, 0)

	for i := 0; i < 2; i++ {
		if isSpeaking, _, ended := vad.ProcessFrame(silence); !isSpeaking || ended {
			t.Errorf("Expected speech to continue through hangover frame %d", i)
		}
	}
	if isSpeaking, _, ended := vad.ProcessFrame(silence); isSpeaking || !ended {
		t.Error("Expected speech to end after 3 silent frames")
	}
}

func TestVADDetector_Reset(t *testing.T) {
	vad := NewVADDetector(nil)
	vad.ProcessFrame(constantFrame(160, 5000))
	if !vad.IsSpeaking() {
		t.Fatal("Expected speaking before reset")
	}

	vad.Reset()
	if vad.IsSpeaking() {
		t.Error("Expected not speaking after reset")
	}
}

func TestSpeechActivity(t *testing.T) {
	const rate = 8000
	samples := append(constantFrame(rate, 5000), constantFrame(rate, 0)...)

	a := SpeechActivity(samples, rate, nil)
	if a.TotalSeconds != 2 {
		t.Errorf("Expected 2s total, got %v", a.TotalSeconds)
	}
	if a.SpeechSeconds != 1 {
		t.Errorf("Expected 1s of speech, got %v", a.SpeechSeconds)
	}
	if a.SpeechRatio != 0.5 {
		t.Errorf("Expected ratio 0.5, got %v", a.SpeechRatio)
	}
	if a.Segments != 1 {
		t.Errorf("Expected 1 segment, got %d", a.Segments)
	}
}

func TestSpeechActivity_TwoSegments(t *testing.T) {
	const rate = 16000
	var samples []int16
	samples = append(samples, constantFrame(rate/2, 4000)...)
	samples = append(samples, constantFrame(rate, 0)...)
	samples = append(samples, constantFrame(rate/2, 4000)...)

	a := SpeechActivity(samples, rate, nil)
	if a.Segments != 2 {
		t.Errorf("Expected 2 segments, got %d", a.Segments)
	}
	if a.SpeechSeconds != 1 {
		t.Errorf("Expected 1s of speech, got %v", a.SpeechSeconds)
	}
}

func TestSpeechActivity_Empty(t *testing.T) {
	if a := SpeechActivity(nil, 8000, nil); a != (Activity{}) {
		t.Errorf("Expected zero activity, got %+v", a)
	}
	if a := SpeechActivity(constantFrame(10, 1), 0, nil); a != (Activity{}) {
		t.Errorf("Expected zero activity for zero sample rate, got %+v", a)
	}
}

func TestCalculateRMS(t *testing.T) {
	if rms := CalculateRMS(constantFrame(100, 1000)); rms != 1000 {
		t.Errorf("Expected RMS 1000, got %f", rms)
	}
	if rms := CalculateRMS([]int16{3, -3, 3, -3}); rms != 3 {
		t.Errorf("Expected RMS 3, got %f", rms)
	}
	if rms := CalculateRMS(nil); rms != 0 {
		t.Errorf("Expected RMS 0 for empty input, got %f", rms)
	}
}
