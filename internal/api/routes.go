package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/suara/adapters/audio"
	"github.com/satriahrh/suara/domain/entities"
	"github.com/satriahrh/suara/domain/repositories"
	"github.com/satriahrh/suara/internal/auth"
	"github.com/satriahrh/suara/internal/metrics"
	"github.com/satriahrh/suara/internal/turn"
	"github.com/satriahrh/suara/internal/websocket"
	"github.com/satriahrh/suara/usecase"
)

const (
	maxUploadBytes    = 16 << 20
	defaultTurnsLimit = 20
	maxTurnsLimit     = 100
)

// Dependencies are the services the routes call into
type Dependencies struct {
	Orchestrator *turn.Orchestrator
	Turns        repositories.TurnRepository
	Content      *usecase.ContentService
	Benchmark    *usecase.BenchmarkService
	Synthesis    *usecase.SynthesisService
	Tokens       *auth.TokenService
	Metrics      *metrics.Metrics
	Hub          *websocket.Hub
	// SampleRate is what uploaded audio is resampled to
	SampleRate int
}

type handler struct {
	Dependencies
	logger *zap.Logger
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies, logger *zap.Logger) {
	if deps.SampleRate <= 0 {
		deps.SampleRate = 16000
	}
	h := &handler{Dependencies: deps, logger: logger}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":     "ok",
			"service":    "suara",
			"session_id": deps.Orchestrator.SessionID(),
			"state":      string(deps.Orchestrator.State()),
		})
	})
	e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))

	// API v1 routes
	v1 := e.Group("/api/v1")
	v1.POST("/auth/token", h.issueToken)

	protected := v1.Group("", auth.Middleware(deps.Tokens, logger))
	protected.POST("/turns", h.createTurn)
	protected.GET("/turns", h.listTurns)
	protected.GET("/history", h.getHistory)
	protected.DELETE("/history", h.clearHistory)
	protected.POST("/content", h.generateContent)
	protected.POST("/benchmark", h.benchmark)
	protected.GET("/voices", h.listVoices)

	// WebSocket endpoint with JWT validation
	e.GET("/ws", h.websocket, auth.Middleware(deps.Tokens, logger))
}

func (h *handler) issueToken(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error("Failed to bind token request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if req.ClientID == "" || req.ClientSecret == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "client_id and client_secret are required",
		})
	}

	token, expiresAt, err := h.Tokens.IssueToken(req.ClientID, req.ClientSecret)
	if errors.Is(err, auth.ErrInvalidClient) {
		h.logger.Warn("Client authentication failed", zap.String("clientID", req.ClientID))
		return c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "authentication_failed",
			Message: "Invalid client credentials",
		})
	}
	if err != nil {
		h.logger.Error("Failed to generate token", zap.String("clientID", req.ClientID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_generation_failed",
			Message: "Failed to generate authentication token",
		})
	}

	h.logger.Info("Client authenticated", zap.String("clientID", req.ClientID))

	return c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		ClientID:  req.ClientID,
	})
}

func (h *handler) createTurn(c echo.Context) error {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_audio",
			Message: "multipart field \"audio\" with a WAV file is required",
		})
	}
	if fileHeader.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "audio_too_large",
			Message: "audio upload exceeds 16MB",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return err
	}

	buffer, err := audio.DecodeWAV(data)
	if err == nil {
		buffer, err = audio.Resample(buffer, h.SampleRate)
	}
	if err != nil {
		h.logger.Warn("Rejected audio upload", zap.String("filename", fileHeader.Filename), zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_audio",
			Message: err.Error(),
		})
	}

	sink := &memorySink{}
	result := h.Orchestrator.RunBufferTurn(c.Request().Context(), buffer, turn.WithSink(sink))

	response := TurnResponse{
		Record:     result.Record,
		Transcript: result.Transcript,
		Reply:      result.Reply,
		Audio:      sink.data,
	}
	if result.Err != nil {
		response.Error = result.Err.Error()
	}

	return c.JSON(turnStatus(result.Outcome()), response)
}

// turnStatus maps a turn outcome to the HTTP status of its response
func turnStatus(outcome entities.TurnOutcome) int {
	switch outcome {
	case entities.OutcomeInvalidInput:
		return http.StatusBadRequest
	case entities.OutcomeGenerationFailed:
		return http.StatusBadGateway
	case entities.OutcomeCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

func (h *handler) listTurns(c echo.Context) error {
	limit := defaultTurnsLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be a positive integer",
			})
		}
		limit = min(parsed, maxTurnsLimit)
	}

	sessionID := h.Orchestrator.SessionID()
	turns, err := h.Turns.ListBySession(c.Request().Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("Failed to list turns", zap.String("sessionID", sessionID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "storage_error",
			Message: "Failed to list turns",
		})
	}
	if turns == nil {
		turns = []*entities.TurnRecord{}
	}

	return c.JSON(http.StatusOK, TurnsResponse{SessionID: sessionID, Turns: turns})
}

func (h *handler) getHistory(c echo.Context) error {
	turns := h.Orchestrator.Response().History()
	if turns == nil {
		turns = []entities.ConversationTurn{}
	}
	return c.JSON(http.StatusOK, HistoryResponse{
		SessionID: h.Orchestrator.SessionID(),
		Turns:     turns,
	})
}

func (h *handler) clearHistory(c echo.Context) error {
	h.Orchestrator.Response().ClearHistory()
	h.logger.Info("Conversation history cleared")
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) generateContent(c echo.Context) error {
	var req ContentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	contentType, err := entities.ParseContentType(req.Type)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_content_type",
			Message: err.Error(),
		})
	}

	ctx := c.Request().Context()
	content := h.Content.Generate(ctx, req.Profile, contentType)

	return c.JSON(http.StatusOK, ContentResponse{
		Content:  content,
		Hashtags: h.Content.Hashtags(ctx, content.Content, req.Profile),
		Keywords: h.Content.Keywords(ctx, content.Content),
	})
}

func (h *handler) benchmark(c echo.Context) error {
	var req BenchmarkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if req.Prompt == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "prompt is required",
		})
	}

	return c.JSON(http.StatusOK, h.Benchmark.Measure(c.Request().Context(), req.Model, req.Prompt))
}

func (h *handler) listVoices(c echo.Context) error {
	ctx := c.Request().Context()

	voices, err := h.Synthesis.ListVoices(ctx)
	if err != nil {
		h.logger.Error("Failed to list voices", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "synthesis_error",
			Message: "Failed to list voices",
		})
	}

	models, err := h.Synthesis.ListModels(ctx)
	if err != nil {
		h.logger.Warn("Failed to list synthesis models", zap.Error(err))
	}

	return c.JSON(http.StatusOK, VoicesResponse{Voices: voices, Models: models})
}

// websocket hands an authenticated request to the hub
func (h *handler) websocket(c echo.Context) error {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	h.logger.Info("WebSocket connection authenticated", zap.String("clientID", claims.ClientID))

	return websocket.ServeClient(h.Hub, c, claims.ClientID, h.logger)
}

// memorySink collects reply audio for the JSON response
type memorySink struct {
	data []byte
}

func (s *memorySink) Write(chunk []byte) (int, error) {
	s.data = append(s.data, chunk...)
	return len(chunk), nil
}

func (s *memorySink) Close() error {
	return nil
}
