package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/silofeed/internal/domain/models"
	"github.com/mamadbah2/silofeed/internal/forecast"
	"github.com/mamadbah2/silofeed/internal/ingest"
	"github.com/mamadbah2/silofeed/internal/report"
)

// ForecastService is the forecasting surface exposed over HTTP.
type ForecastService interface {
	Forecast(ctx context.Context, run models.ForecastRun, samples []models.RawSample) (*models.Report, error)
	FullReport(ctx context.Context, template models.ForecastRun, samples []models.RawSample) ([]forecast.HouseResult, error)
}

// Notifier delivers rendered reports to operators.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// ForecastHandler serves forecasts computed from uploaded sensor exports.
type ForecastHandler struct {
	svc         ForecastService
	notifier    Notifier
	sensorOpts  ingest.SensorOptions
	thresholdKg float64
	logger      *zap.Logger
}

// NewForecastHandler constructs the HTTP handler adapter. notifier may be nil.
func NewForecastHandler(svc ForecastService, notifier Notifier, sensorOpts ingest.SensorOptions, thresholdKg float64, logger *zap.Logger) *ForecastHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForecastHandler{
		svc:         svc,
		notifier:    notifier,
		sensorOpts:  sensorOpts,
		thresholdKg: thresholdKg,
		logger:      logger,
	}
}

type forecastForm struct {
	House       int     `form:"house"`
	HousingDate string  `form:"housing_date" binding:"required"`
	Line        string  `form:"line" binding:"required"`
	Birds       int     `form:"birds" binding:"required"`
	DilutionAge int     `form:"dilution_age"`
	LeftoverKg  float64 `form:"leftover_kg"`
}

type houseResultResponse struct {
	HouseID int            `json:"house_id"`
	Report  *models.Report `json:"report,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Forecast runs a single house forecast. Pass format=text for the plain text report.
func (h *ForecastHandler) Forecast(c *gin.Context) {
	run, samples, ok := h.bindRequest(c, true)
	if !ok {
		return
	}

	result, err := h.svc.Forecast(c.Request.Context(), run, samples)
	if err != nil {
		h.fail(c, "forecast failed", err)
		return
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, report.FormatReport(result, h.thresholdKg))
		return
	}
	c.JSON(http.StatusOK, result)
}

// FullReport forecasts every house of the upload. Pass notify=true to push
// the text rendering through the notifier as well.
func (h *ForecastHandler) FullReport(c *gin.Context) {
	run, samples, ok := h.bindRequest(c, false)
	if !ok {
		return
	}

	results, err := h.svc.FullReport(c.Request.Context(), run, samples)
	if err != nil {
		h.fail(c, "full report failed", err)
		return
	}

	notify, _ := strconv.ParseBool(c.DefaultQuery("notify", "false"))
	if notify {
		if h.notifier == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "notifications are not configured"})
			return
		}
		if err := h.notifier.Notify(c.Request.Context(), report.FormatBatch(results, h.thresholdKg)); err != nil {
			h.logger.Error("failed sending farm report", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send report"})
			return
		}
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, report.FormatBatch(results, h.thresholdKg))
		return
	}

	resp := make([]houseResultResponse, len(results))
	for i, res := range results {
		resp[i] = houseResultResponse{HouseID: res.HouseID, Report: res.Report}
		if res.Err != nil {
			resp[i].Error = res.Err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ForecastHandler) bindRequest(c *gin.Context, needHouse bool) (models.ForecastRun, []models.RawSample, bool) {
	var form forecastForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warn("invalid forecast form", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form: " + err.Error()})
		return models.ForecastRun{}, nil, false
	}
	if needHouse && form.House <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "house must be a positive integer"})
		return models.ForecastRun{}, nil, false
	}

	housing, err := ingest.ParseHousingDate(form.HousingDate)
	if err != nil {
		h.fail(c, "invalid housing date", err)
		return models.ForecastRun{}, nil, false
	}

	run := models.NewForecastRun(form.House, housing, form.Line, form.Birds)
	if form.DilutionAge != 0 {
		run.DilutionStartAge = form.DilutionAge
	}
	run.InitialLeftoverKg = form.LeftoverKg

	samples, err := h.readSensors(c)
	if err != nil {
		h.fail(c, "invalid sensor export", err)
		return models.ForecastRun{}, nil, false
	}

	return run, samples, true
}

func (h *ForecastHandler) readSensors(c *gin.Context) ([]models.RawSample, error) {
	header, err := c.FormFile("sensors")
	if err != nil {
		return nil, fmt.Errorf("%w: multipart file \"sensors\" is required", models.ErrInvalidParameter)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return ingest.ReadSensorCSV(f, h.sensorOpts)
}

func (h *ForecastHandler) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
		c.JSON(status, gin.H{"error": msg})
		return
	}
	h.logger.Warn(msg, zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidParameter),
		errors.Is(err, models.ErrMissingColumn),
		errors.Is(err, models.ErrUnparseableTimestamp):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrEmptyHouseData),
		errors.Is(err, models.ErrInsufficientData),
		errors.Is(err, models.ErrNoValidConsumption):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
