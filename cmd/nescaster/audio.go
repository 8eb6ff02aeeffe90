package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// audioRing is a mutex-guarded byte ring between the game loop, which
// queues samples each frame, and oto's playback goroutine, which reads
// them. Underruns read as silence rather than blocking the device.
type audioRing struct {
	mu   sync.Mutex
	buf  []byte
	head int
	size int
}

func newAudioRing(capacity int) *audioRing {
	return &audioRing{buf: make([]byte, capacity)}
}

// write queues sample bytes, dropping the oldest on overflow.
func (r *audioRing) write(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range data {
		tail := (r.head + r.size) % len(r.buf)
		r.buf[tail] = b
		if r.size < len(r.buf) {
			r.size++
		} else {
			r.head = (r.head + 1) % len(r.buf)
		}
	}
}

// Read feeds oto. Shortfall is zero-filled.
func (r *audioRing) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for n < len(p) && r.size > 0 {
		p[n] = r.buf[r.head]
		r.head = (r.head + 1) % len(r.buf)
		r.size--
		n++
	}
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// audioOutput owns the oto player and the staging ring.
type audioOutput struct {
	player *oto.Player
	ring   *audioRing
	bytes  []byte
}

func newAudioOutput(sampleRate int) (*audioOutput, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("audio device unavailable: %w", err)
	}
	<-ready

	// A quarter second of stereo int16.
	ring := newAudioRing(sampleRate)
	player := ctx.NewPlayer(ring)
	player.Play()

	return &audioOutput{
		player: player,
		ring:   ring,
		bytes:  make([]byte, 0, 8192),
	}, nil
}

// queue converts int16 samples to little-endian bytes and hands them
// to the ring.
func (a *audioOutput) queue(samples []int16) {
	if len(samples) == 0 {
		return
	}
	a.bytes = a.bytes[:0]
	for _, s := range samples {
		a.bytes = append(a.bytes, byte(s), byte(s>>8))
	}
	a.ring.write(a.bytes)
}

func (a *audioOutput) close() {
	if a.player != nil {
		a.player.Close()
	}
}
