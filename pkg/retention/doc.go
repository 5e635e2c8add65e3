// Package retention decides which timestamped snapshots to keep and which
// to drop under a set of periodic retention policies.
//
// # Policies
//
// A Policy is an (interval, count) pair: "keep up to count entries, one per
// interval-sized bucket, counting back from the newest entry". Policies are
// evaluated in order and share retained entries, so "3 daily, 6 weekly"
// never keeps more than 1 + 3 + 6 snapshots:
//
//	schedule := retention.Schedule{
//	    {Interval: 86400, Count: 3},  // daily
//	    {Interval: 604800, Count: 6}, // weekly
//	}
//
//	result, err := retention.Evaluate(schedule, entries)
//	if err != nil {
//	    return err
//	}
//	for ts, name := range result.Drop {
//	    fmt.Println(ts, name)
//	}
//
// # Buckets
//
// For policy p and bucket n the window is
//
//	(ref - (n+1)*p.Interval, ref - n*p.Interval]
//
// where ref is the anchor (the newest entry). If a kept entry already falls
// into the window the bucket is satisfied; otherwise the newest remaining
// entry inside the window is promoted to the keep set. Windows that would
// reach below the epoch are clamped at zero.
//
// # Alignment
//
// AlignAnchor (the default) measures buckets from the anchor's exact
// timestamp. AlignInterval first rounds the anchor up to the next multiple of
// each policy's interval, so daily buckets end at UTC midnight and weekly
// buckets at the Unix week boundary (Thursday 00:00 UTC). Both modes evaluate
// exactly Count buckets per policy.
//
// # Guarantees
//
// Evaluate is pure: it never mutates the input map, and Keep and Drop always
// partition it exactly. The newest entry is always kept, and evaluating the
// same schedule again over Keep drops nothing.
package retention
