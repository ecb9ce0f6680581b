package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	// Get log level from environment
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Business logic logging methods

// LogHoldsCreated logs when a cart's holds are created
func (l *Logger) LogHoldsCreated(ctx context.Context, items int, expiresAt time.Time) {
	l.Logger.InfoContext(ctx,
		"Holds Created",
		slog.Int("line_items", items),
		slog.Time("expires_at", expiresAt),
	)
}

// LogHoldsReleased logs when holds are released back to inventory
func (l *Logger) LogHoldsReleased(ctx context.Context, count int, reason string) {
	l.Logger.InfoContext(ctx,
		"Holds Released",
		slog.Int("count", count),
		slog.String("reason", reason),
	)
}

// LogSweepCompleted logs the outcome of an expiry sweep pass
func (l *Logger) LogSweepCompleted(ctx context.Context, scanned int, released int) {
	l.Logger.InfoContext(ctx,
		"Hold Sweep Completed",
		slog.Int("holds_scanned", scanned),
		slog.Int("holds_released", released),
	)
}

// LogPaymentInitiated logs when a provider transaction is created
func (l *Logger) LogPaymentInitiated(ctx context.Context, buyOrder, orderID string, amount int64) {
	l.Logger.InfoContext(ctx,
		"Payment Initiated",
		slog.String("buy_order", buyOrder),
		slog.String("order_id", orderID),
		slog.Int64("amount", amount),
	)
}

// LogPaymentSettled logs a successful settlement
func (l *Logger) LogPaymentSettled(ctx context.Context, buyOrder, orderID string, ticketsIssued int) {
	l.Logger.InfoContext(ctx,
		"Payment Settled",
		slog.String("buy_order", buyOrder),
		slog.String("order_id", orderID),
		slog.Int("tickets_issued", ticketsIssued),
	)
}

// LogPaymentFailed logs a failed payment attempt
func (l *Logger) LogPaymentFailed(ctx context.Context, buyOrder, reason string) {
	l.Logger.WarnContext(ctx,
		"Payment Failed",
		slog.String("buy_order", buyOrder),
		slog.String("reason", reason),
	)
}

// LogInvariantViolation flags a broken atomicity guarantee for manual reconciliation
func (l *Logger) LogInvariantViolation(ctx context.Context, detail string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("detail", detail))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, "Invariant Violation", args...)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Helper methods for common patterns

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
