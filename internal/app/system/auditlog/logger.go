// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/bloodlink/internal/app/store/audit"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination modes for each category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config holds audit logging configuration, one mode per category.
type Config struct {
	Auth    string
	Admin   string
	Payment string
}

// Logger records audit events to MongoDB (via audit.Store) and to zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op, so handlers built without auditing still work.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategoryPayment:
		setting = l.config.Payment
	}
	if setting == "" {
		setting = ModeAll
	}
	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		// The audit write must outlive a cancelled request.
		if err := l.store.Log(context.WithoutCancel(ctx), event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// Events returns one page of stored events, newest first.
func (l *Logger) Events(ctx context.Context, f audit.QueryFilter, p paging.Params) ([]audit.Event, int64, error) {
	if l == nil || l.store == nil {
		return nil, 0, nil
	}
	return l.store.Query(ctx, f, p)
}

func request(r *http.Request, e audit.Event) audit.Event {
	e.IP = ratelimit.ClientIP(r)
	e.UserAgent = r.UserAgent()
	return e
}

// --- Authentication Events ---

func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, request(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventUserRegistered,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	}))
}

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, request(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	}))
}

// LoginFailedUnknownEmail has no user id to attach; the attempted email
// goes in the details.
func (l *Logger) LoginFailedUnknownEmail(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, request(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUnknownEmail,
		FailureReason: "unknown email",
		Details:       map[string]string{"email": email},
	}))
}

func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, request(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		FailureReason: "wrong password",
		Details:       map[string]string{"email": email},
	}))
}

func (l *Logger) LoginFailedBlocked(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, request(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedBlocked,
		UserID:        &userID,
		FailureReason: "account blocked",
		Details:       map[string]string{"email": email},
	}))
}

func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, request(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		FailureReason: "rate limited",
		Details:       map[string]string{"email": email},
	}))
}

// --- Admin Events ---

// UserStatusChanged records a block or unblock.
func (l *Logger) UserStatusChanged(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID, status string) {
	eventType := audit.EventUserUnblocked
	if status == "blocked" {
		eventType = audit.EventUserBlocked
	}
	l.Log(ctx, request(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		UserID:    &targetUserID,
		ActorID:   &actorID,
		Success:   true,
	}))
}

func (l *Logger) UserRoleChanged(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID, role string) {
	l.Log(ctx, request(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserRoleChanged,
		UserID:    &targetUserID,
		ActorID:   &actorID,
		Success:   true,
		Details:   map[string]string{"role": role},
	}))
}

// --- Payment Events ---

func (l *Logger) FundingConfirmed(ctx context.Context, r *http.Request, userID primitive.ObjectID, transactionID, provider, amount string) {
	l.Log(ctx, request(r, audit.Event{
		Category:  audit.CategoryPayment,
		EventType: audit.EventFundingConfirmed,
		UserID:    &userID,
		Success:   true,
		Details: map[string]string{
			"transaction_id": transactionID,
			"provider":       provider,
			"amount":         amount,
		},
	}))
}
