// Retain decides which periodic backup snapshots to keep.
//
// Snapshot names carry their creation time. Given a list of names and a set
// of retention policies ("one per day for a week, one per week for two
// months"), retain prints the names that are no longer needed, one per line,
// so they can be piped into a deletion command.
//
// Usage:
//
//	# Keep 7 daily and 8 weekly snapshots of a directory listing
//	ls /backups | retain prune -p 1d 7 -p 1w 8 | xargs -r -I{} rm /backups/{}
//
//	# Evaluate a directory directly and show what is kept
//	retain prune --dir /backups -p 86400 7 -v
//
//	# Run every job from a configuration file on its schedule
//	retain run --config retain.yaml
//
//	# Show recent runs
//	retain history --job db --since 72h
package main

func main() {
	Execute()
}
