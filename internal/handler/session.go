package handler

import (
	"paper-analytics/internal/dto"
	"paper-analytics/internal/response"
	"paper-analytics/internal/service"
	"paper-analytics/log"
	apperrors "paper-analytics/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h Handler) session(c *gin.Context) (*service.Session, bool) {
	s, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		response.ErrorResponse(c, err)
		return nil, false
	}
	return s, true
}

func invalidBody(err error) error {
	return apperrors.WrapWithDetail(apperrors.ErrInvalidParams.Code, apperrors.ErrInvalidParams.Message, err.Error(), err)
}

func (h Handler) CreateSession(c *gin.Context) {
	s, err := h.Sessions.Create()
	if err != nil {
		log.GetLogger().Warn("CreateSession rejected", zap.Error(err))
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, dto.CreateSessionResData{
		SessionId: s.ID,
		View:      s.Orchestrator().View(),
	})
}

func (h Handler) ListSessions(c *gin.Context) {
	response.Success(c, dto.ListSessionsResData{SessionIds: h.Sessions.IDs()})
}

func (h Handler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, s.Orchestrator().View())
}

func (h Handler) Search(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.SearchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("Search ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, invalidBody(err))
		return
	}

	orch := s.Orchestrator()
	if err := orch.SubmitDiscovery(c.Request.Context(), req.Keyword, req.YearsBack); err != nil {
		log.GetLogger().Warn("Search failed", zap.String("session_id", s.ID), zap.Error(err))
		response.ErrorWithData(c, err, orch.View())
		return
	}
	response.Success(c, orch.View())
}

func (h Handler) Select(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req dto.SelectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("Select ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, invalidBody(err))
		return
	}

	orch := s.Orchestrator()
	if err := orch.SelectPapers(c.Request.Context(), req.PaperIds); err != nil {
		log.GetLogger().Warn("Select failed", zap.String("session_id", s.ID), zap.Error(err))
		response.ErrorWithData(c, err, orch.View())
		return
	}
	response.Success(c, orch.View())
}

func (h Handler) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Orchestrator().Reset()
	response.Success(c, s.Orchestrator().View())
}

func (h Handler) DeleteSession(c *gin.Context) {
	if err := h.Sessions.Delete(c.Param("id")); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}

func (h Handler) Healthz(c *gin.Context) {
	response.Success(c, dto.HealthResData{Status: "ok", Sessions: h.Sessions.Len()})
}

func (h Handler) NotFound(c *gin.Context) {
	response.ErrorResponse(c, apperrors.ErrNotFound)
}
