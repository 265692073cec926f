package models

import "time"

// NotificationType categorises feed entries.
type NotificationType string

const (
	NotificationTypeSystem         NotificationType = "SYSTEM"
	NotificationTypeNewPublication NotificationType = "NEW_PUBLICATION"
	NotificationTypeAdminMessage   NotificationType = "ADMIN_MESSAGE"
)

// Notification targets exactly one selector: a specific account, every
// holder of a role, or a department. Consumers read it from a live feed;
// there is no acknowledgement lifecycle.
type Notification struct {
	ID         string           `db:"id" json:"id"`
	AccountID  *string          `db:"account_id" json:"account_id,omitempty"`
	Role       *Role            `db:"role" json:"role,omitempty"`
	Department *string          `db:"department" json:"department,omitempty"`
	Title      string           `db:"title" json:"title"`
	Message    string           `db:"message" json:"message"`
	Type       NotificationType `db:"type" json:"type"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// NotificationSelector scopes a feed subscription or listing.
type NotificationSelector struct {
	AccountID  string
	Role       Role
	Department string
}
