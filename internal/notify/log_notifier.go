package notify

import (
	"context"

	"github.com/RezaEskandarii/lrrctl/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogNotifier writes toasts as structured log lines. Error toasts log at error level,
// warnings at warn, everything else at info.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("toast")}
}

func (n *LogNotifier) Notify(_ context.Context, msg types.ToastMessage) {
	fields := []zap.Field{
		zap.String("icon", msg.Icon.String()),
		zap.Bool("auto_dismiss", msg.AutoDismiss),
	}
	if msg.Body != "" {
		fields = append(fields, zap.String("body", msg.Body))
	}
	if msg.ID != "" {
		fields = append(fields, zap.String("id", msg.ID))
	}

	if ce := n.logger.Check(levelFor(msg.Icon), msg.Heading); ce != nil {
		ce.Write(fields...)
	}
}

func levelFor(icon types.Icon) zapcore.Level {
	switch icon {
	case types.IconError:
		return zapcore.ErrorLevel
	case types.IconWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
