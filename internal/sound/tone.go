// Package sound plays the chime that marks a finished step timer.
package sound

import (
	"encoding/binary"
	"math"
	"time"
)

// Audio format used everywhere in this package: signed 16-bit little-endian
// mono PCM.
const (
	SampleRate     = 44100
	ChannelCount   = 1
	bytesPerSample = 2
)

// fade is the length of the linear ramp at each end of a tone. Without it
// the waveform starts and stops mid-cycle and clicks.
const fade = 5 * time.Millisecond

// Tone returns d of a sine wave at freqHz, at 40% of full scale.
func Tone(freqHz float64, d time.Duration) []byte {
	n := samplesFor(d)
	ramp := samplesFor(fade)
	if 2*ramp > n {
		ramp = n / 2
	}

	out := make([]byte, n*bytesPerSample)
	for i := 0; i < n; i++ {
		gain := 0.4
		switch {
		case i < ramp:
			gain *= float64(i) / float64(ramp)
		case i >= n-ramp:
			gain *= float64(n-1-i) / float64(ramp)
		}
		v := gain * math.Sin(2*math.Pi*freqHz*float64(i)/SampleRate)
		binary.LittleEndian.PutUint16(out[i*bytesPerSample:], uint16(int16(v*math.MaxInt16)))
	}
	return out
}

// Silence returns d of zero samples.
func Silence(d time.Duration) []byte {
	return make([]byte, samplesFor(d)*bytesPerSample)
}

// Chime is the "timer done" sound: two rising notes, played twice.
func Chime() []byte {
	var pcm []byte
	for i := 0; i < 2; i++ {
		pcm = append(pcm, Tone(880, 150*time.Millisecond)...)
		pcm = append(pcm, Tone(1320, 250*time.Millisecond)...)
		pcm = append(pcm, Silence(120*time.Millisecond)...)
	}
	return pcm
}

func samplesFor(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Seconds() * SampleRate)
}
