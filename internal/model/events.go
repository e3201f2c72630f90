package model

import "time"

const (
	EventRelayRequested = "relay_requested"
	EventSwapCompleted  = "swap_completed"
)

// RelayRequested is emitted at most once per pending-slot open. The off-chain
// relayer consumes it out of band; delivery is best-effort and there is no
// re-emission if it is missed.
type RelayRequested struct {
	ID               string    `json:"id"`
	Originator       Principal `json:"originator"`
	Venue            VenueID   `json:"venue"`
	Amount           uint64    `json:"amount"`
	AmountUnits      string    `json:"amount_units"` // amount scaled to venue base units
	Direction        bool      `json:"direction"`
	EstimatedSavings uint64    `json:"estimated_savings"`
	CreatedAt        time.Time `json:"created_at"`
}

// SwapCompleted is emitted once per settled swap on the after-swap path.
type SwapCompleted struct {
	ID            string    `json:"id"`
	Originator    Principal `json:"originator"`
	Venue         VenueID   `json:"venue"`
	Amount        uint64    `json:"amount"`
	AmountOut     uint64    `json:"amount_out"`
	WasRelayed    bool      `json:"was_relayed"`
	CostRemaining uint64    `json:"cost_remaining"`
	CreatedAt     time.Time `json:"created_at"`
}
