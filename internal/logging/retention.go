package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget names a directory and the file pattern pruned inside it.
// Exclude lists paths that are never removed, such as the active run's log.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// CleanupOldLogs removes files matching targets whose modification time is
// older than retentionDays and returns how many were removed. Zero or negative
// retention disables pruning.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) int {
	if retentionDays <= 0 {
		return 0
	}
	if logger == nil {
		logger = NewNop()
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	keep := excludedPaths(targets)

	removed := 0
	for _, target := range targets {
		for _, path := range expiredFiles(target, cutoff) {
			if _, skip := keep[path]; skip {
				continue
			}
			if err := os.Remove(path); err != nil {
				WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
					String("path", path),
					Error(err),
					String(FieldErrorHint, "check file permissions and log_dir ownership"),
					String(FieldImpact, "old log file remains on disk"),
				)
				continue
			}
			removed++
			logger.Debug("log pruned",
				String("path", path),
				String(FieldEventType, "log_pruned"),
			)
		}
	}
	if removed > 0 {
		logger.Info("old logs pruned",
			Int("removed", removed),
			Int("retention_days", retentionDays),
			String(FieldEventType, "log_retention_complete"),
		)
	}
	return removed
}

func excludedPaths(targets []RetentionTarget) map[string]struct{} {
	keep := make(map[string]struct{})
	for _, target := range targets {
		for _, path := range target.Exclude {
			if path = strings.TrimSpace(path); path == "" {
				continue
			}
			keep[absPath(path)] = struct{}{}
		}
	}
	return keep
}

// expiredFiles lists regular files in target.Dir matching target.Pattern that
// were last modified before cutoff. Unreadable directories yield nothing.
func expiredFiles(target RetentionTarget, cutoff time.Time) []string {
	dir := strings.TrimSpace(target.Dir)
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	pattern := strings.TrimSpace(target.Pattern)

	var out []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if pattern != "" {
			if matched, err := filepath.Match(pattern, entry.Name()); err != nil || !matched {
				continue
			}
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		out = append(out, absPath(filepath.Join(dir, entry.Name())))
	}
	return out
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
