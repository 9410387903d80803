package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/dto"
	"github.com/campushq/campus-admin-api/internal/models"
	"github.com/campushq/campus-admin-api/pkg/jobs"
)

type fakeNotificationRepo struct {
	mu         sync.Mutex
	created    []*models.Notification
	deliveries map[string][]string
	delivered  chan struct{}
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		deliveries: make(map[string][]string),
		delivered:  make(chan struct{}, 16),
	}
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	n.ID = "notif-1"
	f.mu.Lock()
	f.created = append(f.created, n)
	f.mu.Unlock()
	return nil
}

func (f *fakeNotificationRepo) InsertDeliveries(_ context.Context, notificationID string, userIDs []string) error {
	f.mu.Lock()
	f.deliveries[notificationID] = append(f.deliveries[notificationID], userIDs...)
	f.mu.Unlock()
	f.delivered <- struct{}{}
	return nil
}

func (f *fakeNotificationRepo) ListForUser(_ context.Context, _ string, _ bool) ([]models.UserNotification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, _, _ string) error {
	return nil
}

func (f *fakeNotificationRepo) deliveredUsers(notificationID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deliveries[notificationID]...)
}

type fakeAudienceResolver struct {
	ids []string
}

func (f *fakeAudienceResolver) AudienceIDs(_ context.Context, _ models.NotificationAudience, _ *string) ([]string, error) {
	return f.ids, nil
}

func TestNotificationServiceCreateFansOut(t *testing.T) {
	repo := newFakeNotificationRepo()
	resolver := &fakeAudienceResolver{ids: []string{"u1", "u2", "u3"}}
	svc := NewNotificationService(repo, resolver, zap.NewNop(), jobs.QueueConfig{Workers: 2})

	ctx := context.Background()
	svc.Start(ctx)
	defer svc.Stop()

	notification, recipients, err := svc.Create(ctx, "admin-1", dto.CreateNotificationRequest{
		Title:    "Exam schedule",
		Body:     "Midterms begin Monday.",
		Audience: "STUDENTS",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, recipients)
	assert.Equal(t, models.AudienceStudents, notification.Audience)

	select {
	case <-repo.delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery job never ran")
	}
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, repo.deliveredUsers("notif-1"))
}

func TestNotificationServiceBatchRequiresBatchID(t *testing.T) {
	svc := NewNotificationService(newFakeNotificationRepo(), &fakeAudienceResolver{}, zap.NewNop(), jobs.QueueConfig{Workers: 1})

	_, _, err := svc.Create(context.Background(), "admin-1", dto.CreateNotificationRequest{
		Title:    "Batch notice",
		Body:     "For batch only.",
		Audience: "BATCH",
	})
	assert.Error(t, err)
}

func TestNotificationServiceEmptyAudience(t *testing.T) {
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(repo, &fakeAudienceResolver{}, zap.NewNop(), jobs.QueueConfig{Workers: 1})

	ctx := context.Background()
	svc.Start(ctx)
	defer svc.Stop()

	_, recipients, err := svc.Create(ctx, "admin-1", dto.CreateNotificationRequest{
		Title:    "Nobody home",
		Body:     "No recipients.",
		Audience: "FACULTY",
	})
	require.NoError(t, err)
	assert.Zero(t, recipients)
	assert.Len(t, repo.created, 1)
}
