package log

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for NewRotatingFile.
const (
	// DefaultMaxSizeMB is the size in megabytes at which a log file is rotated.
	DefaultMaxSizeMB = 10

	// DefaultMaxBackups is the number of rotated files kept on disk.
	DefaultMaxBackups = 3

	// DefaultMaxAgeDays is the age after which rotated files are removed.
	DefaultMaxAgeDays = 28
)

// NewRotatingFile returns a writer that appends to path and rotates the file
// once it grows past DefaultMaxSizeMB. Rotated files are gzip-compressed.
// The caller must Close the writer.
func NewRotatingFile(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAgeDays,
		Compress:   true,
	}
}
