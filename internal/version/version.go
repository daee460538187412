// Package version holds build metadata reported by /healthz and the startup log.
//
// Override at build time:
//
//	go build -ldflags "-X github.com/MrSnakeDoc/shelf/internal/version.Version=v1.0.0 \
//	  -X github.com/MrSnakeDoc/shelf/internal/version.Commit=$(git rev-parse --short HEAD)" ./cmd/shelf
package version

import (
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v0.1.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version()               // go version
)
