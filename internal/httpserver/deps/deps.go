package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/disco/internal/auth"
	"github.com/MrSnakeDoc/disco/internal/cache"
	"github.com/MrSnakeDoc/disco/internal/catalog"
	"github.com/MrSnakeDoc/disco/internal/enrich"
	"github.com/MrSnakeDoc/disco/internal/logger"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Production      bool     // hides internal error messages from responses
	AllowedCIDRS    []string // IPs allowed to reach the cache admin endpoints
	TrustProxy      bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	AllowPublicRead bool     // read routes accept anonymous requests
	FrontendURL     string   // OAuth callbacks redirect here
	CORSOrigin      string   // allowed browser origin

	RateBurst  int // per-IP burst on upstream-backed routes
	RatePerMin int // per-IP refill on upstream-backed routes

	Catalog     *catalog.Service
	Cache       *cache.Cache
	Enrich      *enrich.Service
	Tokens      *auth.Tokens
	Google      *auth.Google
	RedisClient *redis.Client // nil when the cache lives in memory
}

// Now returns the configured clock.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
