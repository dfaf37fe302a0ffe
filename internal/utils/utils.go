package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// ParseDurationEnv reads a timeout from the environment. It accepts a Go
// duration ("10s", "1m30s") or a bare number of seconds, optionally quoted
// the way .env files often write them.
func ParseDurationEnv(s string) (time.Duration, error) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be like 10s, 5m or a number of seconds: %w", err)
	}
	return d, nil
}

// ParseRedisURL splits a redis:// or rediss:// URL into the fields the list
// cache is configured with.
func ParseRedisURL(s string) (addr, password string, db int, err error) {
	opts, err := redis.ParseURL(strings.TrimSpace(s))
	if err != nil {
		return "", "", 0, err
	}
	return opts.Addr, opts.Password, opts.DB, nil
}

// IsPGInvalidText reports whether err is a PostgreSQL invalid_text_representation
// error (code 22P02), e.g. a malformed uuid literal.
func IsPGInvalidText(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "22P02"
	}
	return false
}
