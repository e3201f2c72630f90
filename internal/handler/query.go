package handler

import (
	"net/http"
	"strconv"

	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/pkg/apperrors"
	"github.com/GoAMM/hookgate/internal/service"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// QueryHandler 只读查询：指标快照、阈值、授权状态
type QueryHandler struct {
	svc *service.HookService
}

func NewQueryHandler(svc *service.HookService) *QueryHandler {
	return &QueryHandler{svc: svc}
}

func (h *QueryHandler) GetMetrics(c *gin.Context) {
	venue, ok := parseVenue(c.Param("venue"))
	if !ok {
		c.Error(apperrors.NewInvalidRequest("invalid venue id"))
		return
	}
	c.JSON(http.StatusOK, h.svc.GetMetrics(c.Request.Context(), venue))
}

func (h *QueryHandler) GetThreshold(c *gin.Context) {
	venue, ok := parseVenue(c.Param("venue"))
	if !ok {
		c.Error(apperrors.NewInvalidRequest("invalid venue id"))
		return
	}
	effective, def := h.svc.GetThreshold(c.Request.Context(), venue)
	c.JSON(http.StatusOK, model.ThresholdResponse{
		Venue:     venue.Hex(),
		Effective: effective,
		Default:   def,
	})
}

func (h *QueryHandler) IsAuthorized(c *gin.Context) {
	raw := c.Param("principal")
	if !common.IsHexAddress(raw) {
		c.Error(apperrors.NewInvalidRequest("invalid principal address"))
		return
	}
	p := common.HexToAddress(raw)
	c.JSON(http.StatusOK, model.AuthorizationResponse{
		Principal:  p.Hex(),
		Authorized: h.svc.IsAuthorized(c.Request.Context(), p),
	})
}

func (h *QueryHandler) ListReports(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	venue := c.Query("venue")
	if venue != "" {
		if v, ok := parseVenue(venue); ok {
			venue = v.Hex()
		} else {
			c.Error(apperrors.NewInvalidRequest("invalid venue id"))
			return
		}
	}

	reports, err := h.svc.Reports(c.Request.Context(), venue, limit)
	if err != nil {
		c.Error(apperrors.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, reports)
}
