package version

import (
	"runtime"
	"time"
)

// Set through -ldflags "-X github.com/MrSnakeDoc/disco/internal/version.Version=..."
var (
	Version   = "dev"                           // ex: v1.2.0
	Commit    = "none"                          // ex: 3f9c2ab
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2026-03-02T09:15:00Z
	GoVersion = runtime.Version()
)
