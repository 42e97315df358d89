package music

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	provider Provider
	log      zerolog.Logger
}

func NewHandler(provider Provider, log zerolog.Logger) *Handler {
	return &Handler{provider: provider, log: log}
}

func (h *Handler) SearchHandler(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing-query"})
		return
	}

	tracks, err := h.provider.Search(ctx.Request.Context(), query)
	if err != nil {
		h.log.Error().Err(err).Str("query", query).Msg("track search failed")
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "search-failed"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"tracks": tracks})
}

type playRequest struct {
	URI string `json:"uri" binding:"required"`
}

func (h *Handler) PlayHandler(ctx *gin.Context) {
	var req playRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing-uri"})
		return
	}
	if err := h.provider.Play(ctx.Request.Context(), req.URI); err != nil {
		h.log.Error().Err(err).Str("uri", req.URI).Msg("playback start failed")
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "play-failed"})
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *Handler) PauseHandler(ctx *gin.Context) {
	if err := h.provider.Pause(ctx.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("playback pause failed")
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "pause-failed"})
		return
	}
	ctx.Status(http.StatusNoContent)
}
