package utils

import (
	"io"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Close closes c and ignores any error.
// Use for best-effort cleanup in defer where error handling is not critical.
func Close(c io.Closer) {
	_ = c.Close()
}

// MustClose closes c and logs any error. It reports whether the close succeeded.
func MustClose(c io.Closer, log logger.Logger) bool {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.Error(err))
		return false
	}
	return true
}
