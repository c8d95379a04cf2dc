package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with helpers for the events the platform cares
// about: reservations, proof reviews, reconciliation runs, auth failures.
type Logger struct {
	*slog.Logger
}

// New builds a logger from LOG_LEVEL. Text output in debug mode, JSON
// otherwise.
func New() *Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

func parseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogHTTPRequest logs a completed request; attached by the request logger
// middleware.
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogReservationCreated logs when a reservation is created
func (l *Logger) LogReservationCreated(ctx context.Context, reservationID, referenceCode, ticketTypeID string, quantity int) {
	l.Logger.InfoContext(ctx,
		"Reservation Created",
		slog.String("reservation_id", reservationID),
		slog.String("reference_code", referenceCode),
		slog.String("ticket_type_id", ticketTypeID),
		slog.Int("quantity", quantity),
	)
}

// LogProofReviewed logs a payment proof verification decision
func (l *Logger) LogProofReviewed(ctx context.Context, proofID, reservationID, decision string) {
	l.Logger.InfoContext(ctx,
		"Payment Proof Reviewed",
		slog.String("proof_id", proofID),
		slog.String("reservation_id", reservationID),
		slog.String("decision", decision),
	)
}

// LogReconciliation logs the outcome of a ledger reconciliation run
func (l *Logger) LogReconciliation(ctx context.Context, reservationID string, amountPaid, totalAmount float64, status string) {
	l.Logger.InfoContext(ctx,
		"Reservation Reconciled",
		slog.String("reservation_id", reservationID),
		slog.Float64("amount_paid", amountPaid),
		slog.Float64("total_amount", totalAmount),
		slog.String("status", status),
	)
}

// LogLedgerInconsistency logs a detected mismatch between stored and derived state
func (l *Logger) LogLedgerInconsistency(ctx context.Context, reservationID string, storedAmount, derivedAmount float64) {
	l.Logger.WarnContext(ctx,
		"Ledger Inconsistency Detected",
		slog.String("reservation_id", reservationID),
		slog.Float64("stored_amount_paid", storedAmount),
		slog.Float64("derived_amount_paid", derivedAmount),
	)
}

// LogNotificationFailure logs a failed notification dispatch (never propagated)
func (l *Logger) LogNotificationFailure(ctx context.Context, reservationID, notificationType string, err error) {
	l.Logger.WarnContext(ctx,
		"Notification Dispatch Failed",
		slog.String("reservation_id", reservationID),
		slog.String("type", notificationType),
		slog.String("error", err.Error()),
	)
}

// LogAuthFailure logs rejected credentials or tokens with the caller's IP
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

var defaultLogger = New()

// GetDefault returns the process-wide logger. Services that want their own
// fields should be handed a *Logger instead.
func GetDefault() *Logger {
	return defaultLogger
}
