package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/meridian-advisory/insights-api/internal/domain"
)

// Repository provides database operations for the lead workflow.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new repository instance.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const insertLeadQuery = `
	INSERT INTO leads (id, full_name, email, phone, report_slug, report_title,
		report_industry, form_type, source, page_path, page_url, referrer, meta, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

const insertSubmissionQuery = `
	INSERT INTO submission_index (id, lead_id, full_name, email, form_type,
		subject, industry, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

const insertTokenQuery = `
	INSERT INTO download_tokens (id, token_hash, object_key, expires_at, lead_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
`

// CreateSubmission inserts the lead, its submission-index mirror, and the
// optional download token in one transaction. Either every row is visible
// after commit or none is.
func (r *Repository) CreateSubmission(
	ctx context.Context,
	lead *domain.Lead,
	mirror *domain.SubmissionIndex,
	token *domain.DownloadToken,
) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := createSubmissionInTx(ctx, tx, lead, mirror, token); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submission: %w", err)
	}
	return nil
}

// createSubmissionInTx performs the ordered writes of a submission.
func createSubmissionInTx(
	ctx context.Context,
	tx *sqlx.Tx,
	lead *domain.Lead,
	mirror *domain.SubmissionIndex,
	token *domain.DownloadToken,
) error {
	_, err := tx.ExecContext(ctx, insertLeadQuery,
		lead.ID, lead.FullName, lead.Email, lead.Phone, lead.ReportSlug,
		lead.ReportTitle, lead.ReportIndustry, lead.FormType, lead.Source,
		lead.PagePath, lead.PageURL, lead.Referrer, lead.Meta, lead.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}

	_, err = tx.ExecContext(ctx, insertSubmissionQuery,
		mirror.ID, mirror.LeadID, mirror.FullName, mirror.Email,
		mirror.FormType, mirror.Subject, mirror.Industry, mirror.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission index: %w", err)
	}

	if token != nil {
		_, err = tx.ExecContext(ctx, insertTokenQuery,
			token.ID, token.TokenHash, token.ObjectKey,
			token.ExpiresAt, token.LeadID, token.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert download token: %w", err)
		}
	}

	return nil
}

const tokenByHashQuery = `
	SELECT id, token_hash, object_key, expires_at, used_at, lead_id, created_at
	FROM download_tokens
	WHERE token_hash = $1
`

// TokenByHash retrieves a download token by the SHA-256 hash of the raw
// token. Lookup never happens by raw token.
func (r *Repository) TokenByHash(ctx context.Context, hash string) (*domain.DownloadToken, error) {
	token := &domain.DownloadToken{}
	err := r.db.GetContext(ctx, token, tokenByHashQuery, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get token by hash: %w", err)
	}
	return token, nil
}

const consumeTokenQuery = `
	UPDATE download_tokens
	SET used_at = NOW()
	WHERE id = $1 AND used_at IS NULL
`

// ConsumeToken marks a token used. The conditional update enforces single
// use under concurrent redemption: the loser sees zero rows affected and
// gets ErrTokenUsed.
func (r *Repository) ConsumeToken(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, consumeTokenQuery, id)
	if err != nil {
		return fmt.Errorf("consume token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrTokenUsed
	}
	return nil
}
