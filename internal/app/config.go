package app

import (
	"time"

	"github.com/yungbote/lendtrack-backend/internal/platform/envutil"
)

type Config struct {
	JWTSecretKey string
	TokenTTL     time.Duration

	// LateCheckInterval is how often the due-date watcher sweeps.
	LateCheckInterval time.Duration

	// Rate limits: a broad cap on all API traffic and a tighter one on loan
	// creation.
	GlobalRateLimit     int
	GlobalRateWindow    time.Duration
	LoanCreateRateLimit int
	LoanCreateWindow    time.Duration

	PushQueueSize   int
	PushWorkers     int
	PushSendTimeout time.Duration
}

func LoadConfig() Config {
	return Config{
		JWTSecretKey:      envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		TokenTTL:          envutil.DurationSeconds("ACCESS_TOKEN_TTL", 24*time.Hour),
		LateCheckInterval: envutil.DurationSeconds("LATE_CHECK_INTERVAL", 10*time.Minute),

		GlobalRateLimit:     envutil.Int("RATE_LIMIT_GLOBAL", 300),
		GlobalRateWindow:    envutil.DurationSeconds("RATE_LIMIT_GLOBAL_WINDOW", time.Minute),
		LoanCreateRateLimit: envutil.Int("RATE_LIMIT_LOAN_CREATE", 10),
		LoanCreateWindow:    envutil.DurationSeconds("RATE_LIMIT_LOAN_CREATE_WINDOW", time.Minute),

		PushQueueSize:   envutil.Int("PUSH_QUEUE_SIZE", 256),
		PushWorkers:     envutil.Int("PUSH_WORKERS", 4),
		PushSendTimeout: envutil.DurationSeconds("PUSH_SEND_TIMEOUT", 5*time.Second),
	}
}
