package core

// Batcher groups pairs into fixed-size batches, preserving input order.
type Batcher struct {
	size    int
	seq     int
	pending []Pair
}

// NewBatcher returns a batcher emitting batches of size rows.
// A non-positive size falls back to DefaultChunkSize.
func NewBatcher(size int) *Batcher {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Batcher{size: size, pending: make([]Pair, 0, size)}
}

// Size returns the configured batch size.
func (b *Batcher) Size() int { return b.size }

// Add appends p and returns a full batch once size rows are pending.
func (b *Batcher) Add(p Pair) (Batch, bool) {
	b.pending = append(b.pending, p)
	if len(b.pending) < b.size {
		return Batch{}, false
	}
	return b.emit(), true
}

// Flush returns the final partial batch, if any rows are pending.
func (b *Batcher) Flush() (Batch, bool) {
	if len(b.pending) == 0 {
		return Batch{}, false
	}
	return b.emit(), true
}

func (b *Batcher) emit() Batch {
	b.seq++
	out := Batch{Seq: b.seq, Pairs: b.pending}
	b.pending = make([]Pair, 0, b.size)
	return out
}
