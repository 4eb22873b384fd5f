package listen

// ring keeps the most recent samples seen before speech onset.
type ring struct {
	buffer []int16
	head   int
	count  int
}

func newRing(size int) *ring {
	return &ring{buffer: make([]int16, size)}
}

func (r *ring) Add(samples []int16) {
	if len(r.buffer) == 0 {
		return
	}
	for _, s := range samples {
		r.buffer[r.head] = s
		r.head = (r.head + 1) % len(r.buffer)
		if r.count < len(r.buffer) {
			r.count++
		}
	}
}

// Read returns the buffered samples oldest first.
func (r *ring) Read() []int16 {
	out := make([]int16, r.count)
	start := (r.head - r.count + len(r.buffer)) % max(len(r.buffer), 1)
	for i := 0; i < r.count; i++ {
		out[i] = r.buffer[(start+i)%len(r.buffer)]
	}
	return out
}

