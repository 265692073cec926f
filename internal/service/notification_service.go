package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/litrix/litrix-api/internal/models"
	"github.com/litrix/litrix-api/pkg/docpath"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForSelector(ctx context.Context, sel models.NotificationSelector, limit int) ([]models.Notification, error)
}

// DeliveryKind distinguishes the stored backlog from live fan-out.
type DeliveryKind string

const (
	// DeliverySnapshot entries replay the persisted backlog. A subscriber
	// always receives the full snapshot before any live event.
	DeliverySnapshot DeliveryKind = "SNAPSHOT"
	// DeliveryEvent entries arrive over the live channel after the
	// snapshot completes.
	DeliveryEvent DeliveryKind = "EVENT"
)

// Delivery is one feed item pushed to a subscriber.
type Delivery struct {
	Kind         DeliveryKind        `json:"kind"`
	Notification models.Notification `json:"notification"`
}

// liveFeed is the live message leg of a subscription.
type liveFeed interface {
	Messages() <-chan *redis.Message
	Close() error
}

type redisFeed struct {
	pubsub *redis.PubSub
}

func (f redisFeed) Messages() <-chan *redis.Message { return f.pubsub.Channel() }

func (f redisFeed) Close() error { return f.pubsub.Close() }

// NotificationService persists notifications and fans them out over Redis
// pub/sub so every API instance serves the same live feed.
type NotificationService struct {
	repo          notificationRepository
	redis         *redis.Client
	metrics       *MetricsService
	channelPrefix string
	feedBuffer    int
	logger        *zap.Logger

	// openFeed opens the live leg for a set of channels. Nil means the
	// feed ends at the snapshot and just waits for cancellation.
	openFeed func(ctx context.Context, channels []string) liveFeed
}

// NewNotificationService constructs the notification service.
func NewNotificationService(repo notificationRepository, redisClient *redis.Client, metrics *MetricsService, channelPrefix string, feedBuffer int, logger *zap.Logger) *NotificationService {
	if channelPrefix == "" {
		channelPrefix = "litrix:notifications"
	}
	if feedBuffer <= 0 {
		feedBuffer = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		repo:          repo,
		redis:         redisClient,
		metrics:       metrics,
		channelPrefix: channelPrefix,
		feedBuffer:    feedBuffer,
		logger:        logger,
	}
	if redisClient != nil {
		s.openFeed = func(ctx context.Context, channels []string) liveFeed {
			return redisFeed{pubsub: redisClient.Subscribe(ctx, channels...)}
		}
	}
	return s
}

// Publish persists the notification and broadcasts it to every channel
// its selector covers. Persistence is the source of truth: a pub/sub
// failure is logged but does not fail the publish.
func (s *NotificationService) Publish(ctx context.Context, n *models.Notification) error {
	if n.AccountID == nil && n.Role == nil && n.Department == nil {
		return appErrors.Clone(appErrors.ErrValidation, "notification requires a target selector")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Type == "" {
		n.Type = models.NotificationTypeSystem
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist notification")
	}

	if s.redis != nil {
		payload, err := json.Marshal(n)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode notification")
		}
		for _, channel := range s.channelsFor(n) {
			if err := s.redis.Publish(ctx, channel, payload).Err(); err != nil {
				s.logger.Warn("notification fan-out failed",
					zap.String("channel", channel),
					zap.String("notification_id", n.ID),
					zap.Error(err))
			}
		}
	}

	s.metrics.RecordNotificationPublished()
	return nil
}

// List returns the persisted backlog for the selector, oldest first.
func (s *NotificationService) List(ctx context.Context, sel models.NotificationSelector, limit int) ([]models.Notification, error) {
	notifications, err := s.repo.ListForSelector(ctx, sel, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// Subscribe opens a live feed for the selector. The returned channel
// first replays the persisted backlog as snapshot deliveries, then
// carries live events until ctx is cancelled. The channel is closed on
// teardown.
func (s *NotificationService) Subscribe(ctx context.Context, sel models.NotificationSelector) (<-chan Delivery, error) {
	snapshot, err := s.repo.ListForSelector(ctx, sel, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification snapshot")
	}

	var live liveFeed
	if s.openFeed != nil {
		channels := s.channelsForSelector(sel)
		if len(channels) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subscription requires a selector")
		}
		live = s.openFeed(ctx, channels)
	}

	feed := make(chan Delivery, s.feedBuffer)
	go s.pump(ctx, snapshot, live, feed)
	return feed, nil
}

func (s *NotificationService) pump(ctx context.Context, snapshot []models.Notification, live liveFeed, feed chan<- Delivery) {
	defer close(feed)
	if live != nil {
		defer func() {
			if err := live.Close(); err != nil {
				s.logger.Warn("pubsub close failed", zap.Error(err))
			}
		}()
	}

	for _, n := range snapshot {
		select {
		case feed <- Delivery{Kind: DeliverySnapshot, Notification: n}:
		case <-ctx.Done():
			return
		}
	}

	if live == nil {
		<-ctx.Done()
		return
	}

	messages := live.Messages()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var n models.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				s.logger.Warn("dropping malformed notification payload", zap.Error(err))
				continue
			}
			select {
			case feed <- Delivery{Kind: DeliveryEvent, Notification: n}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// channelsFor lists every channel the notification must reach.
func (s *NotificationService) channelsFor(n *models.Notification) []string {
	var channels []string
	if n.AccountID != nil {
		channels = append(channels, s.channel("accounts", *n.AccountID))
	}
	if n.Role != nil {
		channels = append(channels, s.channel("roles", string(*n.Role)))
	}
	if n.Department != nil {
		channels = append(channels, s.channel("departments", *n.Department))
	}
	return channels
}

// channelsForSelector lists every channel a subscriber listens on. An
// account subscriber also hears its role and department broadcasts.
func (s *NotificationService) channelsForSelector(sel models.NotificationSelector) []string {
	var channels []string
	if sel.AccountID != "" {
		channels = append(channels, s.channel("accounts", sel.AccountID))
	}
	if sel.Role != "" {
		channels = append(channels, s.channel("roles", string(sel.Role)))
	}
	if sel.Department != "" {
		channels = append(channels, s.channel("departments", sel.Department))
	}
	return channels
}

func (s *NotificationService) channel(scope, id string) string {
	key, err := docpath.New(s.channelPrefix).Child(scope).Child(id).String()
	if err != nil {
		// Prefix is operator-supplied config; fall back rather than drop.
		return s.channelPrefix + ":" + scope
	}
	return key
}
