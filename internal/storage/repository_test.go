package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-advisory/insights-api/internal/domain"
	"github.com/meridian-advisory/insights-api/internal/storage"
)

func newMockRepo(t *testing.T) (*storage.Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return storage.NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func sampleSubmission() (*domain.Lead, *domain.SubmissionIndex, *domain.DownloadToken) {
	now := time.Now().UTC()
	lead := &domain.Lead{
		ID:             uuid.New(),
		FullName:       "Ada Lovelace",
		Email:          "ada@example.com",
		ReportSlug:     "global-ai-outlook",
		ReportTitle:    "Global AI Outlook",
		ReportIndustry: "Technology",
		FormType:       domain.FormTypeDownloadable,
		Source:         "report-page",
		Meta:           `{"utm_source":"newsletter"}`,
		CreatedAt:      now,
	}
	mirror := &domain.SubmissionIndex{
		ID:        uuid.New(),
		LeadID:    lead.ID,
		FullName:  lead.FullName,
		Email:     lead.Email,
		FormType:  lead.FormType,
		Subject:   lead.ReportTitle,
		Industry:  lead.ReportIndustry,
		CreatedAt: now,
	}
	token := &domain.DownloadToken{
		ID:        uuid.New(),
		TokenHash: domain.HashToken("raw"),
		ObjectKey: "reports/global-ai-outlook.pdf",
		ExpiresAt: now.Add(15 * time.Minute),
		LeadID:    lead.ID,
		CreatedAt: now,
	}
	return lead, mirror, token
}

func TestCreateSubmission_WithToken(t *testing.T) {
	repo, mock := newMockRepo(t)
	lead, mirror, token := sampleSubmission()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO leads").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO submission_index").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO download_tokens").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CreateSubmission(context.Background(), lead, mirror, token)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubmission_WithoutToken(t *testing.T) {
	repo, mock := newMockRepo(t)
	lead, mirror, _ := sampleSubmission()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO leads").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO submission_index").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CreateSubmission(context.Background(), lead, mirror, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubmission_RollsBackOnLeadError(t *testing.T) {
	repo, mock := newMockRepo(t)
	lead, mirror, token := sampleSubmission()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO leads").
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.CreateSubmission(context.Background(), lead, mirror, token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert lead")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubmission_RollsBackOnTokenError(t *testing.T) {
	repo, mock := newMockRepo(t)
	lead, mirror, token := sampleSubmission()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO leads").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO submission_index").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO download_tokens").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.CreateSubmission(context.Background(), lead, mirror, token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert download token")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenByHash(t *testing.T) {
	repo, mock := newMockRepo(t)
	_, _, token := sampleSubmission()

	rows := sqlmock.NewRows([]string{
		"id", "token_hash", "object_key", "expires_at", "used_at", "lead_id", "created_at",
	}).AddRow(token.ID.String(), token.TokenHash, token.ObjectKey, token.ExpiresAt, nil,
		token.LeadID.String(), token.CreatedAt)

	mock.ExpectQuery("SELECT id, token_hash, object_key").
		WithArgs(token.TokenHash).
		WillReturnRows(rows)

	got, err := repo.TokenByHash(context.Background(), token.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, token.ID, got.ID)
	assert.Equal(t, token.ObjectKey, got.ObjectKey)
	assert.False(t, got.Used())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenByHash_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, token_hash, object_key").
		WithArgs("deadbeef").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.TokenByHash(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeToken(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE download_tokens").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ConsumeToken(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeToken_AlreadyUsed(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE download_tokens").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ConsumeToken(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrTokenUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
