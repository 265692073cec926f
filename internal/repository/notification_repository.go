package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/litrix/litrix-api/internal/models"
)

// NotificationRepository persists feed entries. The snapshot a new
// subscriber receives is read from here; live events travel over Redis.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, account_id, role, department, title, message, type, created_at)
		VALUES (:id, :account_id, :role, :department, :title, :message, :type, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListForSelector returns existing notifications matching any leg of the
// selector, oldest first, capped at limit.
func (r *NotificationRepository) ListForSelector(ctx context.Context, sel models.NotificationSelector, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}

	var conditions []string
	var args []interface{}
	if sel.AccountID != "" {
		args = append(args, sel.AccountID)
		conditions = append(conditions, fmt.Sprintf("account_id = $%d", len(args)))
	}
	if sel.Role != "" {
		args = append(args, sel.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if sel.Department != "" {
		args = append(args, sel.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return nil, fmt.Errorf("notification selector is empty")
	}

	query := fmt.Sprintf(`SELECT id, account_id, role, department, title, message, type, created_at
		FROM notifications WHERE %s ORDER BY created_at ASC LIMIT %d`, strings.Join(conditions, " OR "), limit)

	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}
