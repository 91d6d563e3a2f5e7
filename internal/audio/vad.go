package audio

import "math"

// VADConfig holds configuration for Voice Activity Detection
type VADConfig struct {
	EnergyThreshold float64 // RMS energy threshold for speech detection
	SilenceFrames   int     // Consecutive silent frames that end a speech segment
	FrameMillis     int     // Frame length in milliseconds
}

// DefaultVADConfig returns a default VAD configuration
func DefaultVADConfig() *VADConfig {
	return &VADConfig{
		EnergyThreshold: 500.0,
		SilenceFrames:   10, // 200ms of silence at 20ms frames
		FrameMillis:     20,
	}
}

// VADDetector performs frame-by-frame Voice Activity Detection
type VADDetector struct {
	config         *VADConfig
	silenceCounter int
	isSpeaking     bool
}

// NewVADDetector creates a new VAD detector
func NewVADDetector(config *VADConfig) *VADDetector {
	if config == nil {
		config = DefaultVADConfig()
	}
	return &VADDetector{config: config}
}

// ProcessFrame processes an audio frame and returns whether speech is detected
// Returns: (isSpeaking, speechStarted, speechEnded)
func (v *VADDetector) ProcessFrame(samples []int16) (bool, bool, bool) {
	frameHasSpeech := CalculateRMS(samples) > v.config.EnergyThreshold

	var speechStarted, speechEnded bool
	if frameHasSpeech {
		v.silenceCounter = 0
		if !v.isSpeaking {
			speechStarted = true
			v.isSpeaking = true
		}
	} else {
		v.silenceCounter++
		if v.isSpeaking && v.silenceCounter >= v.config.SilenceFrames {
			speechEnded = true
			v.isSpeaking = false
			v.silenceCounter = 0
		}
	}

	return v.isSpeaking, speechStarted, speechEnded
}

// Reset resets the VAD detector state
func (v *VADDetector) Reset() {
	v.silenceCounter = 0
	v.isSpeaking = false
}

// IsSpeaking returns whether speech is currently detected
func (v *VADDetector) IsSpeaking() bool {
	return v.isSpeaking
}

// Activity summarizes voice activity across a whole recording
type Activity struct {
	TotalSeconds  float64 `json:"total_seconds"`
	SpeechSeconds float64 `json:"speech_seconds"`
	SpeechRatio   float64 `json:"speech_ratio"`
	Segments      int     `json:"segments"`
}

// SpeechActivity runs the detector over mono samples and reports how much of
// the recording was speech. Trailing silence that has not yet closed a
// segment is not counted as speech.
func SpeechActivity(samples []int16, sampleRate int, config *VADConfig) Activity {
	if config == nil {
		config = DefaultVADConfig()
	}
	if sampleRate <= 0 || len(samples) == 0 {
		return Activity{}
	}

	frameMillis := config.FrameMillis
	if frameMillis <= 0 {
		frameMillis = 20
	}
	frameSize := max(sampleRate*frameMillis/1000, 1)
	frameSeconds := float64(frameSize) / float64(sampleRate)

	vad := NewVADDetector(config)
	var speechFrames, pendingSilence, segments int
	for start := 0; start < len(samples); start += frameSize {
		frame := samples[start:min(start+frameSize, len(samples))]
		speaking, started, ended := vad.ProcessFrame(frame)

		switch {
		case started:
			segments++
			speechFrames++
			pendingSilence = 0
		case ended:
			// the hangover frames before the segment closed were silence
			speechFrames -= pendingSilence
			pendingSilence = 0
		case speaking && CalculateRMS(frame) > config.EnergyThreshold:
			speechFrames++
			pendingSilence = 0
		case speaking:
			speechFrames++
			pendingSilence++
		}
	}
	speechFrames -= pendingSilence

	total := float64(len(samples)) / float64(sampleRate)
	speech := math.Min(float64(speechFrames)*frameSeconds, total)
	return Activity{
		TotalSeconds:  round3(total),
		SpeechSeconds: round3(speech),
		SpeechRatio:   round3(speech / total),
		Segments:      segments,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
