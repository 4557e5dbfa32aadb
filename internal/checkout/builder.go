package checkout

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharetribe/web-template-sub009/internal/checkout/session"
	"github.com/sharetribe/web-template-sub009/internal/db/checkoutdb"
)

// BuildSessionStore wires a session store from config. Preference order:
// Postgres (DSN set), Redis (URL set), in-memory. Initialization failures
// fall through to the next option so a misconfigured store degrades instead
// of blocking checkout entirely. The returned cleanup closes any external
// resources.
func BuildSessionStore(ctx context.Context, dsn, redisURL string, ttl time.Duration, logf func(format string, args ...any)) (session.Store, func()) {
	if logf == nil {
		logf = log.Printf
	}

	if dsn != "" {
		sqlDB, err := sql.Open("pgx", dsn)
		if err != nil {
			logf("postgres open failed, trying next session store: %v", err)
		} else {
			setupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			store, err := checkoutdb.NewSessionStoreWithSchema(setupCtx, sqlDB)
			if err != nil {
				logf("postgres init failed, trying next session store: %v", err)
				_ = sqlDB.Close()
			} else {
				logf("postgres session store enabled")
				return store, func() {
					if err := sqlDB.Close(); err != nil {
						logf("close postgres: %v", err)
					}
				}
			}
		}
	}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logf("redis url invalid, falling back to in-memory sessions: %v", err)
		} else {
			client := redis.NewClient(opts)
			logf("redis session store enabled")
			return session.NewRedisStore(client, ttl), func() {
				if err := client.Close(); err != nil {
					logf("close redis: %v", err)
				}
			}
		}
	}

	logf("in-memory session store enabled (sessions will not survive a restart)")
	return session.NewMemoryStore(), func() {}
}
