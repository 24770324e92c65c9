// Package files provides the file operations behind the acquisition stage's
// backup-on-overwrite policy.
//
// Before a data file is rewritten, Manager.BackupExisting renames the
// current file to <name>_<YYYYMMDD_HHMM>.csv. Backups are append-only: they
// are never overwritten or pruned. FindBackups lists them oldest first.
//
// Example usage:
//
//	manager := files.NewManager(logger)
//	backup, err := manager.BackupExisting("data/hsi_daily.csv", time.Now())
//	if err != nil {
//	    return err
//	}
package files
