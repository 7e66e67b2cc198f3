package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// StatusFileName is the file the monitor rewrites with the latest sample.
const StatusFileName = "status.txt"

const stampLayout = "20060102_150405"

// LogFilePath returns <logsDir>/<appName>.<stamp>.log for a session
// started at sessionStart.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return sessionFile(logsDir, appName+".", sessionStart, ".log")
}

// InfluxBackupPath returns the gzipped line-protocol file used while
// InfluxDB is unreachable.
func InfluxBackupPath(logsDir string, sessionStart time.Time) string {
	return sessionFile(logsDir, "influx_backup_", sessionStart, ".log.gz")
}

// StatusFilePath returns the monitor status file in logsDir.
func StatusFilePath(logsDir string) string {
	return filepath.Join(logsDir, StatusFileName)
}

func sessionFile(dir, prefix string, t time.Time, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s%s%s", prefix, t.Format(stampLayout), ext))
}
