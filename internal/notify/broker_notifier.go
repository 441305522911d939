package notify

import (
	"context"
	"encoding/json"

	"github.com/RezaEskandarii/lrrctl/internal/message_broaker"
	"github.com/RezaEskandarii/lrrctl/types"
	"go.uber.org/zap"
)

// BrokerNotifier publishes toasts as JSON on a message queue so another process
// (`lrrctl serve`) can display them.
type BrokerNotifier struct {
	broker message_broaker.MessageBroker
	queue  string
	logger *zap.Logger
}

func NewBrokerNotifier(broker message_broaker.MessageBroker, queue string, logger *zap.Logger) *BrokerNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrokerNotifier{broker: broker, queue: queue, logger: logger}
}

func (n *BrokerNotifier) Notify(ctx context.Context, msg types.ToastMessage) {
	payload, err := json.Marshal(Stamp(msg))
	if err != nil {
		n.logger.Error("encode toast", zap.Error(err))
		return
	}
	if err := n.broker.Publish(ctx, n.queue, payload); err != nil {
		n.logger.Warn("publish toast", zap.String("queue", n.queue), zap.Error(err))
	}
}
