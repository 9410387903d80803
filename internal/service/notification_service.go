package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/campus-admin-api/internal/dto"
	"github.com/campushq/campus-admin-api/internal/models"
	appErrors "github.com/campushq/campus-admin-api/pkg/errors"
	"github.com/campushq/campus-admin-api/pkg/jobs"
)

// deliveryJobType identifies fan-out jobs on the notification queue.
const deliveryJobType = "notification.deliver"

// deliveryBatchSize bounds recipients per fan-out job so one huge audience
// does not monopolize a worker.
const deliveryBatchSize = 500

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	InsertDeliveries(ctx context.Context, notificationID string, userIDs []string) error
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]models.UserNotification, error)
	MarkRead(ctx context.Context, deliveryID, userID string) error
}

type audienceResolver interface {
	AudienceIDs(ctx context.Context, audience models.NotificationAudience, batchID *string) ([]string, error)
}

// deliveryPayload is the unit of work enqueued per recipient batch.
type deliveryPayload struct {
	NotificationID string
	UserIDs        []string
}

// NotificationService creates announcements and fans out per-user delivery
// rows on a background queue.
type NotificationService struct {
	repo   notificationRepository
	users  audienceResolver
	queue  *jobs.Queue
	logger *zap.Logger
}

func NewNotificationService(repo notificationRepository, users audienceResolver, logger *zap.Logger, queueCfg jobs.QueueConfig) *NotificationService {
	s := &NotificationService{repo: repo, users: users, logger: logger}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("notifications", s.handleDelivery, queueCfg)
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Create persists the notification and enqueues delivery fan-out. The
// response returns before deliveries are written.
func (s *NotificationService) Create(ctx context.Context, createdBy string, req dto.CreateNotificationRequest) (*models.Notification, int, error) {
	audience := models.NotificationAudience(req.Audience)
	if audience == models.AudienceBatch && (req.BatchID == nil || *req.BatchID == "") {
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, "batch_id is required for BATCH audience")
	}

	recipients, err := s.users.AudienceIDs(ctx, audience, req.BatchID)
	if err != nil {
		return nil, 0, err
	}

	notification := &models.Notification{
		Title:     req.Title,
		Body:      req.Body,
		Audience:  audience,
		BatchID:   req.BatchID,
		CreatedBy: createdBy,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, 0, err
	}

	for start := 0; start < len(recipients); start += deliveryBatchSize {
		end := start + deliveryBatchSize
		if end > len(recipients) {
			end = len(recipients)
		}
		job := jobs.Job{
			ID:   uuid.NewString(),
			Type: deliveryJobType,
			Payload: deliveryPayload{
				NotificationID: notification.ID,
				UserIDs:        recipients[start:end],
			},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Error("failed to enqueue delivery batch",
				zap.String("notification_id", notification.ID),
				zap.Error(err))
		}
	}

	s.logger.Info("notification created",
		zap.String("notification_id", notification.ID),
		zap.String("audience", string(audience)),
		zap.Int("recipients", len(recipients)))
	return notification, len(recipients), nil
}

func (s *NotificationService) handleDelivery(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(deliveryPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	return s.repo.InsertDeliveries(ctx, payload.NotificationID, payload.UserIDs)
}

// ListForUser returns a user's deliveries, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]models.UserNotification, error) {
	return s.repo.ListForUser(ctx, userID, unreadOnly)
}

// MarkRead marks one delivery read. Marking an already-read delivery is a
// no-op for the timestamp.
func (s *NotificationService) MarkRead(ctx context.Context, deliveryID, userID string) error {
	return s.repo.MarkRead(ctx, deliveryID, userID)
}
