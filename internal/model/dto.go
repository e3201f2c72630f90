package model

// BeforeSwapRequest is the JSON body the host posts before executing a swap.
// Payload carries opt-in data hex-encoded; an absent payload means opt-in.
type BeforeSwapRequest struct {
	Sender    string `json:"sender" binding:"required"`
	Venue     string `json:"venue" binding:"required"`
	Requester string `json:"requester,omitempty"`
	Magnitude int64  `json:"magnitude"`
	Direction bool   `json:"direction"`
	Payload   string `json:"payload,omitempty"`
}

// BeforeSwapResponse mirrors the hook return convention: an ack selector, a
// zero amount delta (this policy never adjusts the swap itself) and a fee
// adjustment in the host's fee encoding (0..MaxFee).
type BeforeSwapResponse struct {
	Ack           string `json:"ack"`
	Delta         int64  `json:"delta"`
	FeeAdjustment uint32 `json:"fee_adjustment"`
}

// BalanceDelta 交换结算后两侧余额变化（有符号）
type BalanceDelta struct {
	Amount0 int64 `json:"amount0"`
	Amount1 int64 `json:"amount1"`
}

// AfterSwapRequest is the JSON body the host posts after a swap settled.
type AfterSwapRequest struct {
	Sender        string       `json:"sender" binding:"required"`
	Venue         string       `json:"venue" binding:"required"`
	Requester     string       `json:"requester,omitempty"`
	Magnitude     int64        `json:"magnitude"`
	Direction     bool         `json:"direction"`
	Delta         BalanceDelta `json:"delta"`
	CostRemaining uint64       `json:"cost_remaining,omitempty"`
}

type AfterSwapResponse struct {
	Ack   string `json:"ack"`
	Delta int64  `json:"delta"`
}

// Admin surface bodies. The caller principal comes from the
// X-Caller-Address header, not the body.

type SetThresholdRequest struct {
	Value uint64 `json:"value"`
}

type SetAuthorizationRequest struct {
	Target string `json:"target" binding:"required"`
	Value  bool   `json:"value"`
}

type ReportPerformanceRequest struct {
	ActualSavings uint64 `json:"actual_savings"`
}

type ThresholdResponse struct {
	Venue     string `json:"venue"`
	Effective uint64 `json:"effective"`
	Default   uint64 `json:"default"`
}

type AuthorizationResponse struct {
	Principal  string `json:"principal"`
	Authorized bool   `json:"authorized"`
}
