package notify

import (
	"context"
	"encoding/json"

	"github.com/RezaEskandarii/lrrctl/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisNotifier publishes toasts as JSON on a Redis pub/sub channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisNotifier(client *redis.Client, channel string, logger *zap.Logger) *RedisNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

func (n *RedisNotifier) Notify(ctx context.Context, msg types.ToastMessage) {
	payload, err := json.Marshal(Stamp(msg))
	if err != nil {
		n.logger.Error("encode toast", zap.Error(err))
		return
	}
	if err := n.client.Publish(ctx, n.channel, string(payload)).Err(); err != nil {
		n.logger.Warn("publish toast", zap.String("channel", n.channel), zap.Error(err))
	}
}

// SubscribeRedis streams the raw payloads published on channel until ctx is done.
func SubscribeRedis(ctx context.Context, client *redis.Client, channel string) (<-chan []byte, error) {
	sub := client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan []byte, 100)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
