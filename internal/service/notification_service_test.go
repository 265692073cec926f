package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litrix/litrix-api/internal/models"
	appErrors "github.com/litrix/litrix-api/pkg/errors"
)

type stubNotificationRepo struct {
	created []*models.Notification
	backlog []models.Notification
}

func (r *stubNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	r.created = append(r.created, n)
	return nil
}

func (r *stubNotificationRepo) ListForSelector(ctx context.Context, sel models.NotificationSelector, limit int) ([]models.Notification, error) {
	return r.backlog, nil
}

func TestPublishRequiresSelector(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, nil, nil, "", 0, nil)

	err := svc.Publish(context.Background(), &models.Notification{Title: "untargeted"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestPublishFillsDefaults(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, nil, nil, "", 0, nil)
	role := models.RoleResearcher

	err := svc.Publish(context.Background(), &models.Notification{
		Role:    &role,
		Title:   "maintenance window",
		Message: "tonight at 22:00",
	})

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, models.NotificationTypeSystem, created.Type)
}

func TestSubscribeReplaysSnapshotFirst(t *testing.T) {
	repo := &stubNotificationRepo{backlog: []models.Notification{
		{ID: "n1", Title: "older"},
		{ID: "n2", Title: "newer"},
	}}
	svc := NewNotificationService(repo, nil, nil, "", 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	accountID := "acc-1"
	feed, err := svc.Subscribe(ctx, models.NotificationSelector{AccountID: accountID})
	require.NoError(t, err)

	first := <-feed
	second := <-feed
	assert.Equal(t, DeliverySnapshot, first.Kind)
	assert.Equal(t, "n1", first.Notification.ID)
	assert.Equal(t, DeliverySnapshot, second.Kind)
	assert.Equal(t, "n2", second.Notification.ID)
}

type stubLiveFeed struct {
	messages chan *redis.Message
	closed   bool
}

func (f *stubLiveFeed) Messages() <-chan *redis.Message { return f.messages }

func (f *stubLiveFeed) Close() error {
	f.closed = true
	return nil
}

func TestSubscribeDeliversLiveEventsAfterSnapshot(t *testing.T) {
	repo := &stubNotificationRepo{backlog: []models.Notification{
		{ID: "n1", Title: "older"},
		{ID: "n2", Title: "newer"},
	}}
	svc := NewNotificationService(repo, nil, nil, "", 0, nil)

	live := &stubLiveFeed{messages: make(chan *redis.Message, 1)}
	svc.openFeed = func(ctx context.Context, channels []string) liveFeed { return live }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := svc.Subscribe(ctx, models.NotificationSelector{Department: "Physics"})
	require.NoError(t, err)

	first := <-feed
	second := <-feed
	assert.Equal(t, DeliverySnapshot, first.Kind)
	assert.Equal(t, DeliverySnapshot, second.Kind)

	payload, err := json.Marshal(models.Notification{ID: "n3", Title: "just published"})
	require.NoError(t, err)
	live.messages <- &redis.Message{Payload: string(payload)}

	select {
	case third := <-feed:
		assert.Equal(t, DeliveryEvent, third.Kind)
		assert.Equal(t, "n3", third.Notification.ID)
	case <-time.After(time.Second):
		t.Fatal("live notification was not delivered")
	}

	cancel()
	select {
	case _, open := <-feed:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("feed was not closed after context cancellation")
	}
	assert.True(t, live.closed)
}

func TestSubscribeClosesFeedOnCancel(t *testing.T) {
	svc := NewNotificationService(&stubNotificationRepo{}, nil, nil, "", 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	feed, err := svc.Subscribe(ctx, models.NotificationSelector{AccountID: "acc-1"})
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-feed:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("feed was not closed after context cancellation")
	}
}
