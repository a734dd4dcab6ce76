package bootstrap

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

// ZapAuditLogger writes audit entries to the "audit" logger.
type ZapAuditLogger struct {
	logger *zap.Logger
	clock  clockwork.Clock
}

func NewZapAuditLogger(logger *zap.Logger, clock clockwork.Clock) *ZapAuditLogger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ZapAuditLogger{logger: logger.Named("audit"), clock: clock}
}

func (l *ZapAuditLogger) Log(ctx context.Context, entry AuditLog) {
	l.logger.Info("audit event",
		zap.Time("timestamp", l.clock.Now().UTC()),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	)
}
