package nes

// AudioQueue carries samples from the emulation to the audio device. It is
// bounded and never blocks: a sample pushed to a full queue is dropped.
type AudioQueue struct {
	ch chan float32
}

// NewAudioQueue creates a queue holding up to size samples.
func NewAudioQueue(size int) *AudioQueue {
	return &AudioQueue{ch: make(chan float32, size)}
}

// Push adds a sample. False if the queue was full and the sample dropped.
func (q *AudioQueue) Push(s float32) bool {
	select {
	case q.ch <- s:
		return true
	default:
		return false
	}
}

// TryPop removes the oldest sample, if any.
func (q *AudioQueue) TryPop() (float32, bool) {
	select {
	case s := <-q.ch:
		return s, true
	default:
		return 0, false
	}
}

// Drain empties the queue and returns the number of samples discarded.
func (q *AudioQueue) Drain() int {
	n := 0
	for {
		select {
		case <-q.ch:
			n++
		default:
			return n
		}
	}
}

func (q *AudioQueue) Len() int {
	return len(q.ch)
}

func (q *AudioQueue) Cap() int {
	return cap(q.ch)
}
