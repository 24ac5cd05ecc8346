package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/romangod6/cricket-highlights/internal/metrics"
	"github.com/romangod6/cricket-highlights/internal/models"
	"github.com/romangod6/cricket-highlights/internal/pipeline"
	"github.com/romangod6/cricket-highlights/internal/youtube"
)

// maxNotificationSize bounds webhook bodies.
const maxNotificationSize = 1 << 20

// Ingester merges delivered videos into the catalog.
type Ingester interface {
	Ingest(ctx context.Context, raw []models.RawVideo) (*pipeline.RunResult, error)
}

// StatusReporter returns the most recent run, or nil before the first one.
type StatusReporter interface {
	LastRun() *pipeline.RunResult
}

// VideoFetcher looks up a single uploaded video.
type VideoFetcher interface {
	Video(ctx context.Context, id string) (*youtube.Video, error)
}

type HandlerConfig struct {
	Ingester    Ingester
	Status      StatusReporter
	Videos      VideoFetcher
	Channels    map[string]string
	VerifyToken string
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

type Handler struct {
	ingester    Ingester
	status      StatusReporter
	videos      VideoFetcher
	channels    map[string]string
	verifyToken string
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NotifyResponse reports what happened to an upload notification.
type NotifyResponse struct {
	Status    string `json:"status"`
	VideoID   string `json:"video_id,omitempty"`
	NewVideos int    `json:"new_videos"`
}

// Notification outcomes.
const (
	outcomeIngested    = "ingested"
	outcomeIgnored     = "ignored"
	outcomeNotFound    = "not_found"
	outcomeUnavailable = "unavailable"
	outcomeFiltered    = "filtered"
	outcomeFailed      = "failed"
	outcomeNoEntry     = "no_entry"
	outcomeBadRequest  = "bad_request"
)

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.VerifyToken == "" {
		cfg.VerifyToken = youtube.DefaultVerifyToken
	}
	return &Handler{
		ingester:    cfg.Ingester,
		status:      cfg.Status,
		videos:      cfg.Videos,
		channels:    cfg.Channels,
		verifyToken: cfg.VerifyToken,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
}

// VerifySubscription answers the hub's intent verification by echoing
// hub.challenge.
func (h *Handler) VerifySubscription(c *gin.Context) {
	challenge := c.Query("hub.challenge")
	if challenge == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "hub.challenge is required"})
		return
	}
	if token := c.Query("hub.verify_token"); token != "" && token != h.verifyToken {
		h.logger.Warn("subscription verification with wrong token",
			zap.String("topic", c.Query("hub.topic")))
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "verify token mismatch"})
		return
	}

	h.logger.Info("subscription verified",
		zap.String("mode", c.Query("hub.mode")),
		zap.String("topic", c.Query("hub.topic")))
	c.String(http.StatusOK, challenge)
}

// Notify handles an upload notification: the video is fetched, filtered,
// classified and merged through the same path as a scheduled run.
func (h *Handler) Notify(c *gin.Context) {
	n, err := youtube.ParseNotification(io.LimitReader(c.Request.Body, maxNotificationSize))
	if errors.Is(err, youtube.ErrNoEntry) {
		// Deletions carry no entry.
		h.metrics.Webhook(outcomeNoEntry)
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		h.metrics.Webhook(outcomeBadRequest)
		h.logger.Warn("unreadable notification", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid notification"})
		return
	}

	logger := h.logger.With(zap.String("video_id", n.VideoID), zap.String("channel_id", n.ChannelID))

	channelName, monitored := h.channels[n.ChannelID]
	if !monitored {
		h.metrics.Webhook(outcomeIgnored)
		logger.Info("notification from unmonitored channel")
		c.JSON(http.StatusOK, NotifyResponse{Status: outcomeIgnored, VideoID: n.VideoID})
		return
	}

	video, err := h.videos.Video(c.Request.Context(), n.VideoID)
	if err != nil {
		h.metrics.Webhook(outcomeFailed)
		logger.Error("failed to fetch notified video", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch video"})
		return
	}
	if video == nil {
		h.metrics.Webhook(outcomeNotFound)
		c.JSON(http.StatusOK, NotifyResponse{Status: outcomeNotFound, VideoID: n.VideoID})
		return
	}
	if !video.Playable() {
		h.metrics.Webhook(outcomeUnavailable)
		c.JSON(http.StatusOK, NotifyResponse{Status: outcomeUnavailable, VideoID: n.VideoID})
		return
	}

	raw := youtube.ToRaw(video, channelName)
	raw.ChannelID = n.ChannelID

	result, err := h.ingester.Ingest(c.Request.Context(), []models.RawVideo{raw})
	if err != nil {
		h.metrics.Webhook(outcomeFailed)
		logger.Error("failed to ingest notified video", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to ingest video"})
		return
	}

	status := outcomeIngested
	if !result.Written {
		status = outcomeFiltered
	}
	h.metrics.Webhook(status)
	logger.Info("notification processed", zap.String("status", status), zap.Int("new_videos", result.NewVideos))
	c.JSON(http.StatusOK, NotifyResponse{Status: status, VideoID: n.VideoID, NewVideos: result.NewVideos})
}

// Status returns the most recent run.
func (h *Handler) Status(c *gin.Context) {
	var last *pipeline.RunResult
	if h.status != nil {
		last = h.status.LastRun()
	}
	if last == nil {
		c.JSON(http.StatusOK, gin.H{"status": "no runs yet"})
		return
	}
	c.JSON(http.StatusOK, last)
}
