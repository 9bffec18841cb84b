package handler_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-advisory/insights-api/internal/domain"
	"github.com/meridian-advisory/insights-api/internal/handler"
	"github.com/meridian-advisory/insights-api/internal/logger"
	"github.com/meridian-advisory/insights-api/internal/objectstore"
)

const signedURL = "https://cdn.example.com/reports/global-ai-outlook.pdf?signature=abc"

func downloadRouter(t *testing.T, signer objectstore.Signer, mediaKitKey string) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()

	repo, mock := mockRepo(t)
	h := handler.NewDownloadHandler(repo, signer, testMetrics(), logger.NewNop(), mediaKitKey)

	router := gin.New()
	router.GET("/api/download", h.Redeem)
	router.GET("/api/media-kit", h.MediaKit)
	return router, mock
}

func tokenColumns() []string {
	return []string{"id", "token_hash", "object_key", "expires_at", "used_at", "lead_id", "created_at"}
}

func expectTokenLookup(mock sqlmock.Sqlmock, raw string, expiresAt time.Time, usedAt *time.Time) uuid.UUID {
	id := uuid.New()
	var usedVal any
	if usedAt != nil {
		usedVal = *usedAt
	}
	rows := sqlmock.NewRows(tokenColumns()).
		AddRow(id.String(), domain.HashToken(raw), "reports/global-ai-outlook.pdf",
			expiresAt, usedVal, uuid.NewString(), time.Now().Add(-time.Minute))
	mock.ExpectQuery("SELECT id, token_hash, object_key").
		WithArgs(domain.HashToken(raw)).
		WillReturnRows(rows)
	return id
}

func TestRedeem_HappyPath(t *testing.T) {
	router, mock := downloadRouter(t, stubSigner{url: signedURL}, "")

	raw := "a1b2c3"
	id := expectTokenLookup(mock, raw, time.Now().Add(10*time.Minute), nil)
	mock.ExpectExec("UPDATE download_tokens").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doJSON(t, router, http.MethodGet, "/api/download?token="+raw, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, signedURL, rec.Header().Get("Location"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_MissingToken(t *testing.T) {
	router, mock := downloadRouter(t, stubSigner{url: signedURL}, "")

	rec := doJSON(t, router, http.MethodGet, "/api/download", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_UnknownToken(t *testing.T) {
	router, mock := downloadRouter(t, stubSigner{url: signedURL}, "")

	mock.ExpectQuery("SELECT id, token_hash, object_key").
		WillReturnRows(sqlmock.NewRows(tokenColumns()))

	rec := doJSON(t, router, http.MethodGet, "/api/download?token=deadbeef", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_ExpiredToken(t *testing.T) {
	router, mock := downloadRouter(t, stubSigner{url: signedURL}, "")

	raw := "a1b2c3"
	expectTokenLookup(mock, raw, time.Now().Add(-time.Minute), nil)

	rec := doJSON(t, router, http.MethodGet, "/api/download?token="+raw, nil)
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "token expired", decodeBody(t, rec)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_ExpiredAndUsedReadsAsExpired(t *testing.T) {
	router, mock := downloadRouter(t, stubSigner{url: signedURL}, "")

	raw := "a1b2c3"
	usedAt := time.Now().Add(-30 * time.Minute)
	expectTokenLookup(mock, raw, time.Now().Add(-time.Minute), &usedAt)

	rec := doJSON(t, router, http.MethodGet, "/api/download?token="+raw, nil)
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "token expired", decodeBody(t, rec)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_UsedToken(t *testing.T) {
	router, mock := downloadRouter(t, stubSigner{url: signedURL}, "")

	raw := "a1b2c3"
	usedAt := time.Now().Add(-time.Minute)
	expectTokenLookup(mock, raw, time.Now().Add(10*time.Minute), &usedAt)

	rec := doJSON(t, router, http.MethodGet, "/api/download?token="+raw, nil)
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "token already used", decodeBody(t, rec)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_SigningFailureDoesNotBurnToken(t *testing.T) {
	router, mock := downloadRouter(t, stubSigner{err: errors.New("bucket unreachable")}, "")

	raw := "a1b2c3"
	expectTokenLookup(mock, raw, time.Now().Add(10*time.Minute), nil)
	// No UPDATE expected: the token stays redeemable.

	rec := doJSON(t, router, http.MethodGet, "/api/download?token="+raw, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_SigningDisabled(t *testing.T) {
	router, mock := downloadRouter(t, objectstore.Disabled(), "")

	raw := "a1b2c3"
	expectTokenLookup(mock, raw, time.Now().Add(10*time.Minute), nil)

	rec := doJSON(t, router, http.MethodGet, "/api/download?token="+raw, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_ConcurrentRedemptionLoser(t *testing.T) {
	router, mock := downloadRouter(t, stubSigner{url: signedURL}, "")

	raw := "a1b2c3"
	id := expectTokenLookup(mock, raw, time.Now().Add(10*time.Minute), nil)
	mock.ExpectExec("UPDATE download_tokens").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := doJSON(t, router, http.MethodGet, "/api/download?token="+raw, nil)
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "token already used", decodeBody(t, rec)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaKit(t *testing.T) {
	router, _ := downloadRouter(t, stubSigner{url: signedURL}, "media/press-kit.zip")

	rec := doJSON(t, router, http.MethodGet, "/api/media-kit", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, signedURL, rec.Header().Get("Location"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestMediaKit_NotConfigured(t *testing.T) {
	router, _ := downloadRouter(t, stubSigner{url: signedURL}, "")

	rec := doJSON(t, router, http.MethodGet, "/api/media-kit", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMediaKit_SigningFailure(t *testing.T) {
	router, _ := downloadRouter(t, stubSigner{err: errors.New("bucket unreachable")}, "media/press-kit.zip")

	rec := doJSON(t, router, http.MethodGet, "/api/media-kit", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
