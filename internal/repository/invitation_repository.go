package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/litrix/litrix-api/internal/models"
)

const invitationColumns = `id, email, role, COALESCE(department, '') AS department, token, registration_link,
	sent, COALESCE(error_message, '') AS error_message, consumed, created_at, updated_at`

// InvitationRepository persists invitations and the dispatch outcomes the
// worker records on them.
type InvitationRepository struct {
	db *sqlx.DB
}

// NewInvitationRepository creates a new instance of InvitationRepository.
func NewInvitationRepository(db *sqlx.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create stores a new invitation with sent=false.
func (r *InvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	inv.UpdatedAt = now
	const query = `INSERT INTO invitations (id, email, role, department, token, registration_link, sent, error_message, consumed, created_at, updated_at)
		VALUES (:id, :email, :role, :department, :token, :registration_link, :sent, :error_message, :consumed, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, inv); err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

// GetByID returns one invitation.
func (r *InvitationRepository) GetByID(ctx context.Context, id string) (*models.Invitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM invitations WHERE id = $1 LIMIT 1`, invitationColumns)
	var inv models.Invitation
	if err := r.db.GetContext(ctx, &inv, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	return &inv, nil
}

// GetByToken returns one invitation by registration token.
func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	query := fmt.Sprintf(`SELECT %s FROM invitations WHERE token = $1 LIMIT 1`, invitationColumns)
	var inv models.Invitation
	if err := r.db.GetContext(ctx, &inv, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find invitation by token: %w", err)
	}
	return &inv, nil
}

// RecordDispatch stores the send outcome. The record, not a synchronous
// return value, is how callers learn whether the email went out.
func (r *InvitationRepository) RecordDispatch(ctx context.Context, id string, sent bool, errorMessage string) error {
	const query = `UPDATE invitations SET sent = $2, error_message = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, sent, errorMessage, time.Now().UTC()); err != nil {
		return fmt.Errorf("record invitation dispatch: %w", err)
	}
	return nil
}

// MarkConsumed finalises an invitation after successful registration.
func (r *InvitationRepository) MarkConsumed(ctx context.Context, id string) error {
	const query = `UPDATE invitations SET consumed = TRUE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark invitation consumed: %w", err)
	}
	return nil
}
