package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"foodrec/internal/config"
	"foodrec/internal/log"
	"foodrec/internal/recipe"
	"foodrec/internal/recommend"
)

// Recommender defines the recommendation operations the handler serves.
type Recommender interface {
	Recommend(ctx context.Context, form recipe.Form) ([]recipe.Recommendation, error)
	RunTestCases(ctx context.Context, cases []recommend.TestCase) []recommend.TestResult
}

// SettingStore defines the interface for persisted settings.
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SaveSetting(ctx context.Context, key, value string) error
}

// SessionInvalidator drops the cached endpoint session.
type SessionInvalidator interface {
	Invalidate()
}

// Handler handles HTTP requests.
type Handler struct {
	Recommender Recommender
	Settings    SettingStore
	Sessions    SessionInvalidator
	Endpoint    *config.Endpoint
	// Detect re-resolves the endpoint URL from overrides, storage and environment.
	Detect  func(ctx context.Context) string
	Timeout time.Duration
}

// NewHandler creates a new Handler.
func NewHandler(recommender Recommender, settings SettingStore, sessions SessionInvalidator, endpoint *config.Endpoint, detect func(ctx context.Context) string, timeout time.Duration) *Handler {
	return &Handler{
		Recommender: recommender,
		Settings:    settings,
		Sessions:    sessions,
		Endpoint:    endpoint,
		Detect:      detect,
		Timeout:     timeout,
	}
}

// Register mounts the handler's routes on r.
func Register(r gin.IRouter, h *Handler) {
	r.POST("/recommendations", h.GetRecommendations)
	r.GET("/test-cases", h.ListTestCases)
	r.GET("/test-cases/:id/form", h.TestCaseForm)
	r.POST("/test-cases/run", h.RunTestCases)
	r.GET("/settings/api-url", h.GetAPIURL)
	r.PUT("/settings/api-url", h.SetAPIURL)
	r.POST("/settings/api-url/detect", h.DetectAPIURL)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
}

// GetRecommendations handles a form submission and returns up to
// recipe.MaxResults recommendations.
func (h *Handler) GetRecommendations(c *gin.Context) {
	var form recipe.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	results, err := h.Recommender.Recommend(ctx, form)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "inference endpoint timed out after " + h.Timeout.String()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ListTestCases returns the built-in test cases.
func (h *Handler) ListTestCases(c *gin.Context) {
	c.JSON(http.StatusOK, recommend.DefaultTestCases())
}

// TestCaseForm returns a test case's payload as form fields.
func (h *Handler) TestCaseForm(c *gin.Context) {
	tc, ok := recommend.FindTestCase(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "test case not found"})
		return
	}
	c.JSON(http.StatusOK, recipe.FormFromRequest(tc.Payload))
}

// RunTestCases runs every built-in test case in order and reports each outcome.
func (h *Handler) RunTestCases(c *gin.Context) {
	cases := recommend.DefaultTestCases()

	// Each case gets the full timeout.
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout*time.Duration(len(cases)))
	defer cancel()

	c.JSON(http.StatusOK, gin.H{"results": h.Recommender.RunTestCases(ctx, cases)})
}

// GetAPIURL returns the endpoint URL in use.
func (h *Handler) GetAPIURL(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"api_url": h.Endpoint.URL()})
}

type apiURLBody struct {
	APIURL string `json:"api_url"`
}

// SetAPIURL changes the endpoint URL and persists it.
func (h *Handler) SetAPIURL(c *gin.Context) {
	var body apiURLBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	url := strings.TrimSpace(body.APIURL)
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "api_url is required"})
		return
	}

	if err := h.applyAPIURL(c.Request.Context(), url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"api_url": url})
}

// DetectAPIURL re-runs endpoint detection and applies the result.
func (h *Handler) DetectAPIURL(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	url := h.Detect(ctx)
	if err := h.applyAPIURL(ctx, url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"api_url": url})
}

// applyAPIURL switches to url, drops the session for the old endpoint and
// persists the new value.
func (h *Handler) applyAPIURL(ctx context.Context, url string) error {
	if h.Endpoint.Set(url) {
		h.Sessions.Invalidate()
	}
	if err := h.Settings.SaveSetting(ctx, config.SettingAPIURL, url); err != nil {
		return err
	}

	logger := log.WithContext(ctx, log.WithComponent("api"))
	logger.Info().Str("api_url", url).Msg("endpoint updated")
	return nil
}
