package retention

// Evaluate partitions entries into the ones to keep and the ones to drop
// under the given policies.
//
// The newest entry is always kept. Each policy then walks Count buckets back
// from the reference point; a bucket already covered by a kept entry is
// skipped, otherwise the newest remaining entry inside it is promoted.
// Everything never promoted is dropped.
//
// The input map is not modified. Both result maps are freshly allocated and
// non-nil, even for empty input. An invalid policy is reported as a
// *PolicyError before any entry is examined.
func Evaluate[T any](policies []Policy, entries map[Timestamp]T, opts ...Option) (Result[T], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	for i, p := range policies {
		if err := p.Validate(); err != nil {
			return Result[T]{}, &PolicyError{Index: i, Policy: p, Err: err}
		}
	}

	result := Result[T]{
		Keep: make(map[Timestamp]T),
		Drop: make(map[Timestamp]T),
	}
	if len(entries) == 0 {
		return result, nil
	}

	remaining := newTimeline()
	for ts := range entries {
		remaining.add(ts)
	}
	kept := newTimeline()
	promote := func(ts Timestamp) {
		remaining.remove(ts)
		kept.add(ts)
		result.Keep[ts] = entries[ts]
	}

	anchor, _ := remaining.last()
	promote(anchor)

	for i, p := range policies {
		ref := referencePoint(uint64(anchor), p.Interval, o.alignment)
		for n := uint64(0); n < uint64(p.Count); n++ {
			w, ok := bucketWindow(ref, p.Interval, n)
			if !ok {
				break
			}

			b := Bucket{Policy: i, Index: n, Window: w, Outcome: BucketEmpty}
			if ts, found := kept.latestIn(w); found {
				b.Outcome, b.Timestamp = BucketSatisfied, ts
			} else if ts, found := remaining.latestIn(w); found {
				promote(ts)
				b.Outcome, b.Timestamp = BucketFilled, ts
			}
			if o.trace {
				result.Buckets = append(result.Buckets, b)
			}

			if remaining.len() == 0 && !o.trace {
				break
			}
		}
	}

	for ts, v := range entries {
		if _, ok := result.Keep[ts]; !ok {
			result.Drop[ts] = v
		}
	}
	return result, nil
}
