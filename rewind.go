package nescaster

// rewindBuffer is a bounded ring of snapshots. RunFrame serializes
// into scratch every capture interval and pushes a copy; Rewind pops
// the newest entry back into the machine.
type rewindBuffer struct {
	// scratch is one snapshot-sized staging buffer, reused so steady
	// state captures do not allocate.
	scratch []byte

	slots [][]byte
	head  int
	count int
}

func newRewindBuffer(depth, snapSize int) *rewindBuffer {
	slots := make([][]byte, depth)
	for i := range slots {
		slots[i] = make([]byte, snapSize)
	}
	return &rewindBuffer{
		scratch: make([]byte, snapSize),
		slots:   slots,
	}
}

// push copies scratch into the ring, evicting the oldest entry when
// full.
func (r *rewindBuffer) push() {
	copy(r.slots[r.head], r.scratch)
	r.head = (r.head + 1) % len(r.slots)
	if r.count < len(r.slots) {
		r.count++
	}
}

// pop returns the newest snapshot and removes it, or nil when empty.
func (r *rewindBuffer) pop() []byte {
	if r.count == 0 {
		return nil
	}
	r.head = (r.head - 1 + len(r.slots)) % len(r.slots)
	r.count--
	return r.slots[r.head]
}

func (r *rewindBuffer) clear() {
	r.head = 0
	r.count = 0
}

// Rewind steps the machine back to the most recent rewind capture.
// Returns false when rewind is disabled or no capture exists.
func (c *Console) Rewind() bool {
	if c.bus == nil || c.rewind == nil {
		return false
	}
	snap := c.rewind.pop()
	if snap == nil {
		return false
	}
	return c.LoadStateBuffer(snap)
}

// RewindAvailable returns how many rewind captures are queued.
func (c *Console) RewindAvailable() int {
	if c.rewind == nil {
		return 0
	}
	return c.rewind.count
}
