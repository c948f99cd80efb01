// Package files moves pipeline outputs into place without losing what was
// there before.
//
// Manager.Promote writes every output to a temporary file first, then backs
// up each existing target as <name>_backup_<YYYYMMDD_HHMMSS>.<ext> and renames
// the new file into place. A failure in either phase leaves the previous
// files where they were.
//
//	m := files.NewManager(logger)
//	promo, err := m.Promote(ctx, []files.Output{{Path: target, Write: writeCSV}})
//
// Discovery lists backups so Manager.PruneBackups can enforce the retention
// window; Checksum computes the BLAKE2b digests recorded in metadata.json.
package files
