package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/isotoolkit/keeper/internal/access"
	"github.com/isotoolkit/keeper/internal/logger"
	"github.com/isotoolkit/keeper/internal/stats"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	RedisClient  *redis.Client    // nil when running memory-only
	Counter      *stats.Counter   // ping outcome tallies
	Gate         *access.Gate     // operator allow-set
	TargetURL    string           // keep-alive target
	PingInterval time.Duration    // background ping period
}
