package nescaster

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavRecorder streams the mixed stereo output to a 16-bit WAV file.
// It taps samples as the host consumes them, via ReadAudioSamples or
// the audio callback, so recording never disturbs playback.
type wavRecorder struct {
	file    *os.File
	encoder *wav.Encoder
	buf     audio.IntBuffer
}

func newWAVRecorder(path string, sampleRate int) (*wavRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	return &wavRecorder{
		file:    f,
		encoder: enc,
		buf: audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: 2,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: 16,
		},
	}, nil
}

func (r *wavRecorder) write(samples []int16) {
	if cap(r.buf.Data) < len(samples) {
		r.buf.Data = make([]int, len(samples))
	}
	r.buf.Data = r.buf.Data[:len(samples)]
	for i, s := range samples {
		r.buf.Data[i] = int(s)
	}
	if err := r.encoder.Write(&r.buf); err != nil {
		fmt.Fprintf(os.Stderr, "nescaster: wav write failed: %v\n", err)
	}
}

func (r *wavRecorder) close() error {
	encErr := r.encoder.Close()
	fileErr := r.file.Close()
	if encErr != nil {
		return encErr
	}
	return fileErr
}

// StartAudioRecording begins writing consumed audio to a WAV file at
// path. Any recording already in progress is finalized first.
func (c *Console) StartAudioRecording(path string) error {
	if c.bus == nil {
		return fmt.Errorf("no ROM loaded")
	}
	if err := c.StopAudioRecording(); err != nil {
		return err
	}
	rec, err := newWAVRecorder(path, c.opts.SampleRate)
	if err != nil {
		return err
	}
	c.recorder = rec
	return nil
}

// StopAudioRecording finalizes the WAV file. A no-op when not
// recording.
func (c *Console) StopAudioRecording() error {
	if c.recorder == nil {
		return nil
	}
	err := c.recorder.close()
	c.recorder = nil
	return err
}

// IsRecordingAudio reports whether a WAV capture is in progress.
func (c *Console) IsRecordingAudio() bool {
	return c.recorder != nil
}
