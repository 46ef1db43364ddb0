package database

import "errors"

var (
	ErrTimeout       = errors.New("operation timed out")
	ErrToolNotFound  = errors.New("database tool not found")
	ErrBackupFailed  = errors.New("backup failed")
	ErrRestoreFailed = errors.New("restore failed")
)
