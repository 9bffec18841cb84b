package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meridian-advisory/insights-api/internal/domain"
	"github.com/meridian-advisory/insights-api/internal/logger"
	"github.com/meridian-advisory/insights-api/internal/middleware"
	"github.com/meridian-advisory/insights-api/internal/objectstore"
	"github.com/meridian-advisory/insights-api/internal/storage"
)

// DownloadHandler redeems single-use download tokens and serves the
// media-kit redirect.
type DownloadHandler struct {
	repo        *storage.Repository
	signer      objectstore.Signer
	metrics     *middleware.Metrics
	logger      logger.Logger
	mediaKitKey string
}

// NewDownloadHandler creates a DownloadHandler.
func NewDownloadHandler(
	repo *storage.Repository,
	signer objectstore.Signer,
	metrics *middleware.Metrics,
	log logger.Logger,
	mediaKitKey string,
) *DownloadHandler {
	return &DownloadHandler{
		repo:        repo,
		signer:      signer,
		metrics:     metrics,
		logger:      log,
		mediaKitKey: mediaKitKey,
	}
}

// Redeem handles GET /api/download. The token is consumed only after a
// signed URL was obtained, so a signing failure never burns the token.
func (h *DownloadHandler) Redeem(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	ctx := c.Request.Context()
	token, err := h.repo.TokenByHash(ctx, domain.HashToken(raw))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown token"})
			return
		}
		h.logger.Error("Token lookup failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	// Expiry is checked before the used marker so an expired token always
	// reads as expired.
	if token.Expired(time.Now()) {
		c.JSON(http.StatusGone, gin.H{"error": "token expired"})
		return
	}
	if token.Used() {
		c.JSON(http.StatusGone, gin.H{"error": "token already used"})
		return
	}

	signedURL, err := h.signer.SignGet(ctx, token.ObjectKey)
	if err != nil {
		h.logger.Error("Signing download URL failed",
			logger.String("object_key", token.ObjectKey),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "download unavailable"})
		return
	}

	if err := h.repo.ConsumeToken(ctx, token.ID); err != nil {
		if errors.Is(err, domain.ErrTokenUsed) {
			// Lost the race to a concurrent redemption.
			c.JSON(http.StatusGone, gin.H{"error": "token already used"})
			return
		}
		h.logger.Error("Consuming token failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.metrics.TokensRedeemedTotal.Inc()
	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, signedURL)
}

// MediaKit handles GET /api/media-kit, redirecting to a signed URL for the
// fixed media-kit object. No token involved.
func (h *DownloadHandler) MediaKit(c *gin.Context) {
	if h.mediaKitKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "media kit not available"})
		return
	}

	signedURL, err := h.signer.SignGet(c.Request.Context(), h.mediaKitKey)
	if err != nil {
		h.logger.Error("Signing media-kit URL failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "download unavailable"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, signedURL)
}
