package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// initSpeaker opens the output device on first use at sr.
// Later tracks are resampled to whatever rate the device was opened with.
func initSpeaker(sr beep.SampleRate) (beep.SampleRate, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if speakerInitialized {
		return speakerSampleRate, nil
	}

	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return 0, err
	}

	speakerInitialized = true
	speakerSampleRate = sr
	return sr, nil
}

// outputRate is the rate the device was opened with, or zero before the first track.
func outputRate() beep.SampleRate {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	return speakerSampleRate
}
