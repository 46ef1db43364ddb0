package operations

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/St3phaneM1chon/peptide-backup/internal/manifest"
	"github.com/St3phaneM1chon/peptide-backup/internal/retention"
)

// Health levels reported by Status.
const (
	HealthOK       = "OK"
	HealthWarning  = "WARNING"
	HealthCritical = "CRITICAL"
)

// staleAfter is how old the newest local backup may get before the
// status health degrades to WARNING.
const staleAfter = 24 * time.Hour

// Counts breaks the stored backups down by type.
type Counts struct {
	Total      int `json:"total"`
	Local      int `json:"local"`
	Production int `json:"production"`
}

// LatestAges carries hours-since-newest per type; nil means none exist.
type LatestAges struct {
	LocalHoursAgo      *float64 `json:"local_hours_ago"`
	ProductionHoursAgo *float64 `json:"production_hours_ago"`
}

// StatusReport is the --status output.
type StatusReport struct {
	Health         string           `json:"health"`
	Message        string           `json:"message"`
	Counts         Counts           `json:"counts"`
	TotalSizeBytes int64            `json:"total_size_bytes"`
	Latest         LatestAges       `json:"latest"`
	Retention      retention.Policy `json:"retention"`
	BackupDir      string           `json:"backup_dir"`
}

// BackupInfo is one row of the --list output.
type BackupInfo struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Date      string `json:"date"`
	AgeDays   int    `json:"age_days"`
	Path      string `json:"path"`
}

type backupFile struct {
	path string
	info os.FileInfo
}

func (o *Operator) backupFiles() []backupFile {
	matches, err := filepath.Glob(filepath.Join(o.cfg.Backup.Directory, backupGlob))
	if err != nil {
		return nil
	}

	files := make([]backupFile, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		files = append(files, backupFile{path: path, info: info})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].info.ModTime().Before(files[j].info.ModTime())
	})
	return files
}

// Status summarizes backup health: counts, sizes, and the age of the
// newest backup per type.
func (o *Operator) Status() StatusReport {
	now := o.now()
	files := o.backupFiles()

	report := StatusReport{
		Retention: o.policy(),
		BackupDir: o.cfg.Backup.Directory,
	}

	var newestLocal, newestProd time.Time
	for _, f := range files {
		report.Counts.Total++
		report.TotalSizeBytes += f.info.Size()
		name := filepath.Base(f.path)
		switch {
		case strings.HasPrefix(name, manifest.TypeLocal+"_"):
			report.Counts.Local++
			newestLocal = f.info.ModTime()
		case strings.HasPrefix(name, manifest.TypeProduction+"_"):
			report.Counts.Production++
			newestProd = f.info.ModTime()
		}
	}

	var localHours, prodHours *float64
	if !newestLocal.IsZero() {
		h := now.Sub(newestLocal).Hours()
		localHours = &h
	}
	if !newestProd.IsZero() {
		h := now.Sub(newestProd).Hours()
		prodHours = &h
	}
	report.Latest = LatestAges{LocalHoursAgo: localHours, ProductionHoursAgo: prodHours}

	switch {
	case report.Counts.Total == 0:
		report.Health = HealthCritical
		report.Message = "no backups exist"
	case localHours != nil && *localHours > staleAfter.Hours():
		report.Health = HealthWarning
		report.Message = fmt.Sprintf("local backup %.0fh old (>24h)", *localHours)
	case localHours != nil:
		report.Health = HealthOK
		report.Message = fmt.Sprintf("last local backup %.1fh ago", *localHours)
	default:
		report.Health = HealthOK
		report.Message = "backups exist"
	}

	return report
}

// List returns every stored backup, newest first.
func (o *Operator) List() []BackupInfo {
	files := o.backupFiles()
	now := o.now()

	out := make([]BackupInfo, 0, len(files))
	for i := len(files) - 1; i >= 0; i-- {
		f := files[i]
		out = append(out, BackupInfo{
			Name:      filepath.Base(f.path),
			SizeBytes: f.info.Size(),
			Date:      f.info.ModTime().Format("2006-01-02 15:04"),
			AgeDays:   retention.AgeDays(f.info.ModTime(), now),
			Path:      f.path,
		})
	}
	return out
}
