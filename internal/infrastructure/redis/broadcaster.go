package redis

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Chibuzo15/crm-project-sub000/internal/domain/realtime"
	"github.com/Chibuzo15/crm-project-sub000/internal/infrastructure/metrics"
)

// LocalDeliverer delivers encoded events to this instance's sessions.
type LocalDeliverer interface {
	DeliverEncoded(rooms []string, excludeSession, kind string, data []byte) int
}

// Envelope is the pub/sub frame shared between instances.
type Envelope struct {
	Origin         string          `json:"origin"`
	Rooms          []string        `json:"rooms"`
	ExcludeSession string          `json:"exclude_session,omitempty"`
	Kind           string          `json:"kind"`
	Event          json.RawMessage `json:"event"`
}

// Broadcaster delivers locally and republishes every delivery on a Redis
// channel so sessions connected to other instances receive it too.
type Broadcaster struct {
	client  redis.UniversalClient
	channel string
	origin  string
	local   LocalDeliverer
	log     zerolog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewBroadcaster creates a broadcaster; call Start to receive remote events.
func NewBroadcaster(client redis.UniversalClient, channel string, local LocalDeliverer, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		local:   local,
		log:     log.With().Str("component", "redis-broadcaster").Logger(),
	}
}

// Broadcast delivers to local sessions first, then publishes. A publish
// failure leaves local delivery intact and is returned for logging.
func (b *Broadcaster) Broadcast(ctx context.Context, delivery realtime.Delivery) error {
	data, err := json.Marshal(delivery.Event)
	if err != nil {
		return err
	}
	kind := string(delivery.Event.Kind)
	b.local.DeliverEncoded(delivery.Rooms, delivery.ExcludeSession, kind, data)

	frame, err := json.Marshal(Envelope{
		Origin:         b.origin,
		Rooms:          delivery.Rooms,
		ExcludeSession: delivery.ExcludeSession,
		Kind:           kind,
		Event:          data,
	})
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, frame).Err(); err != nil {
		metrics.FanoutErrors.WithLabelValues("publish").Inc()
		return err
	}
	return nil
}

// Start subscribes to the channel and delivers remote events until Stop.
func (b *Broadcaster) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		ctx, b.cancel = context.WithCancel(ctx)
		sub := b.client.Subscribe(ctx, b.channel)

		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			defer sub.Close()
			b.log.Info().Str("channel", b.channel).Msg("redis fan-out subscriber started")

			messages := sub.Channel()
			for {
				select {
				case <-ctx.Done():
					b.log.Info().Msg("redis fan-out subscriber stopped")
					return
				case msg, ok := <-messages:
					if !ok {
						return
					}
					b.handle(msg.Payload)
				}
			}
		}()
	})
}

// Stop ends the subscription and waits for the receive loop to exit.
func (b *Broadcaster) Stop() {
	b.stopOnce.Do(func() {
		if b.cancel != nil {
			b.cancel()
		}
		b.wg.Wait()
	})
}

// handle delivers one remote frame, skipping frames this instance published.
func (b *Broadcaster) handle(payload string) {
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		metrics.FanoutErrors.WithLabelValues("decode").Inc()
		b.log.Warn().Err(err).Msg("dropping malformed fan-out frame")
		return
	}
	if env.Origin == b.origin {
		return
	}
	b.local.DeliverEncoded(env.Rooms, env.ExcludeSession, env.Kind, env.Event)
}
