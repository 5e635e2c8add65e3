package retention

import (
	"math"
	"math/bits"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
)

// referencePoint returns the instant buckets are measured back from.
func referencePoint(anchor, interval uint64, a Alignment) uint64 {
	if a != AlignInterval {
		return anchor
	}
	rem := anchor % interval
	if rem == 0 {
		return anchor
	}
	ref, carry := bits.Add64(anchor, interval-rem, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return ref
}

// bucketWindow returns the n-th window below ref. It returns false once the
// window lies entirely before the epoch; every later bucket does too.
func bucketWindow(ref, interval, n uint64) (Window, bool) {
	upperOff, ok := mul(interval, n)
	if !ok || upperOff > ref {
		return Window{}, false
	}
	w := Window{Upper: Timestamp(ref - upperOff)}

	lowerOff, ok := mul(interval, n+1)
	if !ok || lowerOff > ref {
		w.FromEpoch = true
		return w, true
	}
	w.Lower = Timestamp(ref - lowerOff)
	return w, true
}

// mul multiplies a and b, reporting false on overflow.
func mul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// timeline is an ordered set of timestamps.
type timeline struct {
	tree *redblacktree.Tree
}

func newTimeline() *timeline {
	return &timeline{tree: redblacktree.NewWith(utils.UInt64Comparator)}
}

func (t *timeline) add(ts Timestamp) {
	t.tree.Put(uint64(ts), struct{}{})
}

func (t *timeline) remove(ts Timestamp) {
	t.tree.Remove(uint64(ts))
}

func (t *timeline) len() int {
	return t.tree.Size()
}

// last returns the largest timestamp in the set.
func (t *timeline) last() (Timestamp, bool) {
	node := t.tree.Right()
	if node == nil {
		return 0, false
	}
	return Timestamp(node.Key.(uint64)), true
}

// latestIn returns the largest timestamp inside w.
func (t *timeline) latestIn(w Window) (Timestamp, bool) {
	node, found := t.tree.Floor(uint64(w.Upper))
	if !found {
		return 0, false
	}
	ts := Timestamp(node.Key.(uint64))
	if !w.Contains(ts) {
		return 0, false
	}
	return ts, true
}
