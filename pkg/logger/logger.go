package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/angelmondragon/gymdesk-backend/pkg/env"
)

// Options configures the structured logger. A zero Level means debug, which
// matches zerolog's own zero value.
type Options struct {
	ServiceName string
	Level       zerolog.Level
	WarnStack   bool
	Output      io.Writer
	// Instance tags every line; it defaults to env.InstanceID().
	Instance string
}

// Logger carries request-scoped fields through context.Context. A nil
// *Logger is valid and discards everything.
type Logger struct {
	base      *zerolog.Logger
	warnStack bool
}

type ctxKey struct{}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

func New(opts Options) *Logger {
	var output io.Writer = os.Stdout
	if opts.Output != nil {
		output = opts.Output
	}
	if strings.EqualFold(env.Get("LOG_FORMAT", "json"), "console") {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.TimeOnly}
	}
	instance := opts.Instance
	if instance == "" {
		instance = env.InstanceID()
	}

	base := zerolog.New(output).
		Level(opts.Level).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Str("instance", instance).
		Logger()
	return &Logger{base: &base, warnStack: opts.WarnStack}
}

// Nop discards everything; used by tools and tests.
func Nop() *Logger {
	logger := zerolog.Nop()
	return &Logger{base: &logger}
}

func ParseLevel(value string) zerolog.Level {
	levelString := strings.ToLower(strings.TrimSpace(value))
	if levelString == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(levelString); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.InfoLevel
}

func (l *Logger) loggerFromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return entry
		}
	}
	return l.base
}

func (l *Logger) attach(ctx context.Context, entry zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, &entry)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	if l == nil {
		return ctx
	}
	entry := l.loggerFromContext(ctx)
	return l.attach(ctx, entry.With().Interface(key, value).Logger())
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	if l == nil {
		return ctx
	}
	builder := l.loggerFromContext(ctx).With()
	for k, v := range fields {
		builder = builder.Interface(k, v)
	}
	return l.attach(ctx, builder.Logger())
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

func (l *Logger) WithUserID(ctx context.Context, userID string) context.Context {
	return l.WithField(ctx, "user_id", userID)
}

func (l *Logger) WithActorRole(ctx context.Context, role string) context.Context {
	return l.WithField(ctx, "actor_role", role)
}

func (l *Logger) WithMemberID(ctx context.Context, memberID string) context.Context {
	return l.WithField(ctx, "member_id", memberID)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	if l == nil {
		return
	}
	l.loggerFromContext(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	if l == nil {
		return
	}
	l.loggerFromContext(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	if l == nil {
		return
	}
	event := l.loggerFromContext(ctx).Warn()
	if l.warnStack {
		event = event.Str("stack", stackTrace())
	}
	event.Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	if l == nil {
		return
	}
	event := l.loggerFromContext(ctx).Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Str("stack", stackTrace()).Msg(msg)
}

func stackTrace() string {
	return strings.TrimSpace(string(debug.Stack()))
}
