package handler

import (
	"net/http"

	"github.com/GoAMM/hookgate/internal/middleware"
	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/service"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
)

type HookHandler struct {
	svc *service.HookService
}

func NewHookHandler(svc *service.HookService) *HookHandler {
	return &HookHandler{svc: svc}
}

// BeforeSwap is the pre-swap observation point invoked by the host before
// it settles a swap.
func (h *HookHandler) BeforeSwap(c *gin.Context) {
	var req model.BeforeSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	call, errMsg := parseSwapCall(req.Sender, req.Venue, req.Requester, req.Magnitude, req.Direction)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	// Absent payload ⇒ opt-in true
	var payload []byte
	if req.Payload != "" {
		decoded, err := hexutil.Decode(req.Payload)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload hex"})
			return
		}
		payload = decoded
	}
	call.Request.OptIn = service.DecodeOptIn(payload)

	result := h.svc.BeforeSwap(c.Request.Context(), call)

	middleware.AddAuditContext(c, "venue", call.Venue.Hex())
	middleware.AddAuditContext(c, "deferred", result.Deferred)
	middleware.AddAuditContext(c, "fulfilled", result.Fulfilled)
	middleware.AddAuditContext(c, "fee_adjustment", result.FeeAdjustment)

	c.JSON(http.StatusOK, model.BeforeSwapResponse{
		Ack:           "before_swap",
		Delta:         0,
		FeeAdjustment: result.FeeAdjustment,
	})
}

// AfterSwap is the post-swap observation point invoked by the host once the
// swap settled.
func (h *HookHandler) AfterSwap(c *gin.Context) {
	var req model.AfterSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	call, errMsg := parseSwapCall(req.Sender, req.Venue, req.Requester, req.Magnitude, req.Direction)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	result := h.svc.AfterSwap(c.Request.Context(), call, req.Delta, req.CostRemaining)

	middleware.AddAuditContext(c, "venue", call.Venue.Hex())
	middleware.AddAuditContext(c, "was_relayed", result.WasRelayed)
	middleware.AddAuditContext(c, "originator", result.Originator.Hex())

	c.JSON(http.StatusOK, model.AfterSwapResponse{
		Ack:   "after_swap",
		Delta: 0,
	})
}

func parseSwapCall(sender, venue, requester string, magnitude int64, direction bool) (service.SwapCall, string) {
	if !common.IsHexAddress(sender) {
		return service.SwapCall{}, "invalid sender address"
	}
	venueID, ok := parseVenue(venue)
	if !ok {
		return service.SwapCall{}, "invalid venue id"
	}

	call := service.SwapCall{
		Sender: common.HexToAddress(sender),
		Venue:  venueID,
		Request: model.SwapRequest{
			Magnitude: magnitude,
			Direction: direction,
			OptIn:     true,
		},
	}
	if requester != "" {
		if !common.IsHexAddress(requester) {
			return service.SwapCall{}, "invalid requester address"
		}
		call.Request.Requester = common.HexToAddress(requester)
	} else {
		call.Request.Requester = call.Sender
	}
	return call, ""
}

func parseVenue(raw string) (model.VenueID, bool) {
	if len(raw) != 2+2*common.HashLength || raw[:2] != "0x" {
		return model.VenueID{}, false
	}
	b, err := hexutil.Decode(raw)
	if err != nil {
		return model.VenueID{}, false
	}
	return common.BytesToHash(b), true
}
