package notify

import (
	"context"
	"encoding/json"

	"github.com/RezaEskandarii/lrrctl/types"
	"go.uber.org/zap"
)

// Relay decodes toasts published by other processes and hands them to target until
// the source closes or ctx is done. Undecodable payloads are logged and skipped.
func Relay(ctx context.Context, source <-chan []byte, target Notifier, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-source:
			if !ok {
				return
			}
			var msg types.ToastMessage
			if err := json.Unmarshal(payload, &msg); err != nil {
				logger.Warn("skip undecodable toast", zap.Error(err))
				continue
			}
			target.Notify(ctx, msg)
		}
	}
}
