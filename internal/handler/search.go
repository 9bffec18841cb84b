// Package handler implements the HTTP handlers of the insights API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/meridian-advisory/insights-api/internal/logger"
	"github.com/meridian-advisory/insights-api/internal/search"
)

// Cache policies for the read-only content endpoints.
const (
	searchCacheControl   = "public, max-age=30, stale-while-revalidate=300"
	keywordsCacheControl = "public, max-age=60, stale-while-revalidate=600"
)

// SearchHandler serves site search and keyword suggestions.
type SearchHandler struct {
	engine    *search.Engine
	suggester *search.Suggester
	logger    logger.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(engine *search.Engine, suggester *search.Suggester, log logger.Logger) *SearchHandler {
	return &SearchHandler{
		engine:    engine,
		suggester: suggester,
		logger:    log,
	}
}

// Search handles GET /api/search.
func (h *SearchHandler) Search(c *gin.Context) {
	req := search.Request{
		Scope:  c.Query("scope"),
		Query:  c.Query("q"),
		Limit:  intQuery(c, "limit"),
		Offset: intQuery(c, "offset"),
		Mode:   c.Query("mode"),
	}

	resp := h.engine.Search(req)

	c.Header("Cache-Control", searchCacheControl)
	c.JSON(http.StatusOK, resp)
}

// Keywords handles GET /api/insights/keywords.
func (h *SearchHandler) Keywords(c *gin.Context) {
	query := c.Query("q")
	suggestions := h.suggester.Suggest(query, intQuery(c, "limit"))

	c.Header("Cache-Control", keywordsCacheControl)
	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"suggestions": suggestions,
	})
}

// intQuery parses an integer query parameter, returning 0 for absent or
// unparseable values. Bounds are enforced downstream.
func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
