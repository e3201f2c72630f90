package handler

import (
	"net/http"

	"github.com/GoAMM/hookgate/internal/middleware"
	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/pkg/apperrors"
	"github.com/GoAMM/hookgate/internal/service"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the authorized-only policy mutations. The caller
// principal comes from CallerMiddleware; whether it may mutate is decided
// by the registry inside the service; an unauthorized caller aborts the
// request before any state changed.
type AdminHandler struct {
	svc *service.HookService
}

func NewAdminHandler(svc *service.HookService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) SetDefaultThreshold(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.Error(apperrors.NewInvalidRequest("missing caller"))
		return
	}

	var req model.SetThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	if err := h.svc.SetDefaultThreshold(c.Request.Context(), caller, req.Value); err != nil {
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "set_default_threshold")
	middleware.AddAuditContext(c, "value", req.Value)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) SetVenueThreshold(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.Error(apperrors.NewInvalidRequest("missing caller"))
		return
	}

	venue, ok := parseVenue(c.Param("venue"))
	if !ok {
		c.Error(apperrors.NewInvalidRequest("invalid venue id"))
		return
	}

	var req model.SetThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	if err := h.svc.SetVenueThreshold(c.Request.Context(), caller, venue, req.Value); err != nil {
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "set_venue_threshold")
	middleware.AddAuditContext(c, "venue", venue.Hex())
	middleware.AddAuditContext(c, "value", req.Value)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) SetAuthorization(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.Error(apperrors.NewInvalidRequest("missing caller"))
		return
	}

	var req model.SetAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}
	if !common.IsHexAddress(req.Target) {
		c.Error(apperrors.NewInvalidRequest("invalid target address"))
		return
	}

	if err := h.svc.SetAuthorization(c.Request.Context(), caller, common.HexToAddress(req.Target), req.Value); err != nil {
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "set_authorization")
	middleware.AddAuditContext(c, "target", req.Target)
	middleware.AddAuditContext(c, "value", req.Value)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) ReportPerformance(c *gin.Context) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.Error(apperrors.NewInvalidRequest("missing caller"))
		return
	}

	venue, ok := parseVenue(c.Param("venue"))
	if !ok {
		c.Error(apperrors.NewInvalidRequest("invalid venue id"))
		return
	}

	var req model.ReportPerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.NewInvalidRequest(err.Error()))
		return
	}

	if err := h.svc.ReportPerformance(c.Request.Context(), caller, venue, req.ActualSavings); err != nil {
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "action", "report_performance")
	middleware.AddAuditContext(c, "venue", venue.Hex())
	middleware.AddAuditContext(c, "actual_savings", req.ActualSavings)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
