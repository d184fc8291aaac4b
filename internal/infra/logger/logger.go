package logger

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	lg   *zap.Logger
	once sync.Once
)

// New builds the process logger once and installs it as zap's global logger.
// Production emits sampled JSON with ISO8601 timestamps; every other env gets a colored console.
func New(env string) (*zap.Logger, error) {
	var err error
	once.Do(func() {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if env == "production" {
			cfg = zap.NewProductionConfig()
			cfg.EncoderConfig.TimeKey = "time"
			cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		}

		lg, err = cfg.Build(zap.Fields(zap.String("env", env)))
		if err == nil {
			zap.ReplaceGlobals(lg)
		}
	})

	return lg, err
}

// WithContext returns the process logger enriched with the request id and signed-in user found on ctx.
// Before New has run it falls back to zap's global logger, a no-op by default.
func WithContext(ctx context.Context) *zap.Logger {
	base := lg
	if base == nil {
		base = zap.L()
	}
	if ctx == nil {
		return base
	}

	var fields []zap.Field
	if requestID := stringFromContext(ctx, RequestIDKey{}); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if userID := stringFromContext(ctx, UserIDKey{}); userID != "" {
		fields = append(fields, zap.String("user_id", userID))
	}
	return base.With(fields...)
}

func stringFromContext(ctx context.Context, key any) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(key).(string); ok {
		return val
	}
	return ""
}

// RequestIDKey is used to store a request identifier on the context.
type RequestIDKey struct{}

// UserIDKey is used to store the signed-in user identifier on the context.
type UserIDKey struct{}

var emailRegex = regexp.MustCompile(`^([^@]{1,3})[^@]*(@.+)$`)

// MaskEmail keeps the first characters of the local part and the domain.
// Example: marie.dupont@hotel.fr -> mar***@hotel.fr
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	if matches := emailRegex.FindStringSubmatch(email); len(matches) == 3 {
		return matches[1] + "***" + matches[2]
	}

	if _, domain, ok := strings.Cut(email, "@"); ok {
		return "***@" + domain
	}
	return "***"
}

// MaskIP hides the host part of an IPv4 address or the interface id of an IPv6 one.
func MaskIP(ip string) string {
	switch {
	case ip == "":
		return ""
	case strings.Count(ip, ".") == 3:
		parts := strings.Split(ip, ".")
		return parts[0] + "." + parts[1] + ".*.*"
	case strings.Contains(ip, ":"):
		parts := strings.Split(ip, ":")
		if len(parts) >= 4 {
			return strings.Join(parts[:4], ":") + ":*:*:*:*"
		}
	}
	return "***"
}
