// Package source lists snapshot names from stdin, a directory or an S3
// prefix and turns them into timestamped entries for the retention
// evaluator.
//
// Names are parsed with a strftime format (default "%Y%m%d-%H:%M"). A name
// that does not match is not an error: it is reported as a ParseWarning and
// left out of the evaluation, so a stray file never aborts a prune run.
//
//	parser, err := source.NewTimeParser("%Y%m%d-%H:%M")
//	if err != nil {
//	    return err
//	}
//	src := source.NewDirSource("/backups", parser)
//	listing, err := src.List(ctx)
//	if err != nil {
//	    return err
//	}
//	entries, dupes := source.Collect(listing.Entries)
package source
