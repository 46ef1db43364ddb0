// Package retention decides which backup files survive a cleanup pass.
//
// Windows use the original fixed approximation of 7 days per week and
// 30 days per month rather than calendar arithmetic. Changing that
// would change which files survive the weekly and monthly buckets, so
// the approximation is kept deliberately.
package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	daysPerWeek  = 7
	daysPerMonth = 30
)

// Bucket names the retention tier that kept a file.
type Bucket string

const (
	BucketMonthly Bucket = "monthly"
	BucketWeekly  Bucket = "weekly"
	BucketDaily   Bucket = "daily"
	BucketNone    Bucket = ""
)

// Policy holds the keep-window per bucket: Daily in days, Weekly in
// weeks (Sunday backups), Monthly in months (1st-of-month backups).
type Policy struct {
	Daily   int `json:"daily"`
	Weekly  int `json:"weekly"`
	Monthly int `json:"monthly"`
}

// DefaultPolicy matches the commercial-data retention the tool ships
// with: 14 daily, 8 weekly, 6 monthly.
var DefaultPolicy = Policy{Daily: 14, Weekly: 8, Monthly: 6}

// AgeDays is the whole-day age of a file modified at mtime, as of now.
func AgeDays(mtime, now time.Time) int {
	return int(now.Sub(mtime).Hours() / 24)
}

// Classify decides the fate of a file modified at mtime, evaluated at
// now. Buckets are checked monthly, weekly, daily; first match keeps.
// The decision depends only on its inputs, so re-evaluating an
// unchanged file set yields the same partition.
func (p Policy) Classify(mtime, now time.Time) (Bucket, bool) {
	age := AgeDays(mtime, now)

	switch {
	case mtime.Day() == 1 && age <= p.Monthly*daysPerMonth:
		return BucketMonthly, true
	case mtime.Weekday() == time.Sunday && age <= p.Weekly*daysPerWeek:
		return BucketWeekly, true
	case age <= p.Daily:
		return BucketDaily, true
	}
	return BucketNone, false
}

// RemovedFile details one deletion in a cleanup report.
type RemovedFile struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	AgeDays   int    `json:"age_days"`
}

// Report summarizes one cleanup pass.
type Report struct {
	Kept         int           `json:"kept"`
	Removed      int           `json:"removed"`
	RemovedFiles []RemovedFile `json:"removed_files"`
	FreedBytes   int64         `json:"freed_bytes"`
	Policy       Policy        `json:"retention_policy"`
}

// Sweep applies the policy to every file in dir matching glob,
// deleting the ones no bucket keeps.
func (p Policy) Sweep(dir, glob string, now time.Time) (Report, error) {
	report := Report{Policy: p, RemovedFiles: []RemovedFile{}}

	matches, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return report, fmt.Errorf("glob backups: %w", err)
	}
	sort.Strings(matches)

	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if _, keep := p.Classify(info.ModTime(), now); keep {
			report.Kept++
			continue
		}

		if err := os.Remove(path); err != nil {
			return report, fmt.Errorf("remove %s: %w", path, err)
		}
		report.Removed++
		report.FreedBytes += info.Size()
		report.RemovedFiles = append(report.RemovedFiles, RemovedFile{
			Name:      filepath.Base(path),
			SizeBytes: info.Size(),
			AgeDays:   AgeDays(info.ModTime(), now),
		})
	}

	return report, nil
}
