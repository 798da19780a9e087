package entities

// Kind selects one of the independent identity counters.
type Kind int

const (
	KindIndividual Kind = iota
	KindFamily
	KindSource
	KindNote
	kindCount
)

// Allocator hands out sequential integer identities, one counter per kind.
// It is owned by a Graph and is not safe for concurrent use.
type Allocator struct {
	last [kindCount]int
}

// NewAllocator returns an allocator whose counters start at zero.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns the next identity for k.
func (a *Allocator) Next(k Kind) int {
	a.last[k]++
	return a.last[k]
}

// Observe moves the counter for k past n so later identities never collide
// with one assigned elsewhere.
func (a *Allocator) Observe(k Kind, n int) {
	if n > a.last[k] {
		a.last[k] = n
	}
}

// Reset sets every counter back to zero.
func (a *Allocator) Reset() {
	a.last = [kindCount]int{}
}
