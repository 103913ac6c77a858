// Package server expose la détection de drivers en HTTP (gin).
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"subscriber-drivers/pkg/analysis"
	"subscriber-drivers/pkg/metrics"
	"subscriber-drivers/pkg/models"
	"subscriber-drivers/pkg/narration"
)

// ErrorResponse est le corps renvoyé en cas d'erreur.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SubscriptionsRequest est le corps de POST /v1/drivers/subscriptions.
type SubscriptionsRequest struct {
	Subscriptions []models.SubscriptionRecord `json:"subscriptions" validate:"dive"`
}

// DetectResponse est le corps de POST /v1/drivers/detect.
type DetectResponse struct {
	Drivers   models.DriverReport  `json:"drivers"`
	Narration *analysis.Narratives `json:"narration,omitempty"`
}

// Handlers porte la configuration de détection et les collaborateurs optionnels.
type Handlers struct {
	detection models.DetectionConfig
	recorder  *metrics.Recorder
	narrator  narration.Narrator
	validate  *validator.Validate
}

// NewHandlers construit les handlers ; recorder et narrator peuvent être nil.
func NewHandlers(cfg models.DetectionConfig, recorder *metrics.Recorder, narrator narration.Narrator) *Handlers {
	return &Handlers{
		detection: cfg,
		recorder:  recorder,
		narrator:  narrator,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes monte les routes sur le routeur.
func RegisterRoutes(r gin.IRouter, h *Handlers) {
	r.GET("/health", h.HandleHealth)
	if h.recorder != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.recorder.Registry, promhttp.HandlerOpts{})))
	}
	v1 := r.Group("/v1/drivers")
	v1.POST("/add-churn", h.HandleAddChurn)
	v1.POST("/subscriptions", h.HandleSubscriptions)
	v1.POST("/detect", h.HandleDetect)
}

// HandleHealth GET /health
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "narration": h.narrator != nil})
}

// HandleAddChurn POST /v1/drivers/add-churn : frames hebdomadaires → analyse d'alignement.
func (h *Handlers) HandleAddChurn(c *gin.Context) {
	var req models.AddChurnFrames
	if !h.bind(c, &req) {
		return
	}
	report := analysis.Detect(analysis.Input{AddChurn: req}, h.detection)
	h.recorder.ObserveReport(models.DriverReport{AddChurn: report.AddChurn})
	c.JSON(http.StatusOK, report.AddChurn)
}

// HandleSubscriptions POST /v1/drivers/subscriptions : souscriptions brutes → analyse de mix.
func (h *Handlers) HandleSubscriptions(c *gin.Context) {
	var req SubscriptionsRequest
	if !h.bind(c, &req) {
		return
	}
	report := analysis.Detect(analysis.Input{Subscriptions: req.Subscriptions}, h.detection)
	h.recorder.ObserveReport(models.DriverReport{Subscriptions: report.Subscriptions})
	c.JSON(http.StatusOK, report.Subscriptions)
}

// HandleDetect POST /v1/drivers/detect?narrate=true : les deux analyses, narration en option.
func (h *Handlers) HandleDetect(c *gin.Context) {
	var req analysis.Input
	if !h.bind(c, &req) {
		return
	}
	resp := DetectResponse{Drivers: analysis.Detect(req, h.detection)}
	h.recorder.ObserveReport(resp.Drivers)

	if c.Query("narrate") == "true" {
		if h.narrator == nil {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "narration is not configured"})
			return
		}
		n, err := narrate(c.Request.Context(), h.narrator, resp.Drivers)
		if err != nil {
			slog.Error("narration failed", "err", err)
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "narration failed", Details: err.Error()})
			return
		}
		resp.Narration = &n
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body", Details: err.Error()})
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: verrs.Error()})
			return false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
		return false
	}
	return true
}

func narrate(ctx context.Context, n narration.Narrator, r models.DriverReport) (analysis.Narratives, error) {
	var out analysis.Narratives
	var err error
	if out.Subscriptions, err = n.NarrateSubscriptions(ctx, r.Subscriptions); err != nil {
		return out, err
	}
	out.AddChurn, err = n.NarrateAddChurn(ctx, r.AddChurn)
	return out, err
}
