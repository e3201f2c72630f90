package model

import (
	"encoding/binary"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Principal 标识一个调用方（链上地址等价物）
type Principal = common.Address

// VenueID is the opaque identifier of a trading venue. It is derived by the
// host from the venue configuration and treated as an opaque key everywhere
// in this service.
type VenueID = common.Hash

// DeriveVenueID computes the canonical venue id for a token pair and fee
// tier. Hosts and tests must use the same derivation so ids line up.
func DeriveVenueID(token0, token1 common.Address, feeTier uint32) VenueID {
	buf := make([]byte, 0, 2*common.AddressLength+4)
	buf = append(buf, token0.Bytes()...)
	buf = append(buf, token1.Bytes()...)
	buf = binary.BigEndian.AppendUint32(buf, feeTier)
	return crypto.Keccak256Hash(buf)
}

// SwapRequest 描述一次进入场所的交换请求
type SwapRequest struct {
	Requester Principal `json:"requester"`
	Magnitude int64     `json:"magnitude"` // signed; MinInt64 is a legal value
	Direction bool      `json:"direction"` // true = zero-for-one
	OptIn     bool      `json:"opt_in"`    // relay opt-in, defaults to true
}

// PendingEntry is the single-slot record of a deferred swap awaiting
// fulfillment by an authorized relayer. At most one active entry exists per
// venue; a newer relay decision overwrites the slot.
type PendingEntry struct {
	Requester Principal `json:"requester"`
	Magnitude int64     `json:"magnitude"`
	Direction bool      `json:"direction"`
	Active    bool      `json:"active"`
}

// VenueMetrics 场所维度的累计指标，只增不减
type VenueMetrics struct {
	RelayedCount              uint64 `json:"relayed_count"`
	CumulativeReportedSavings uint64 `json:"cumulative_reported_savings"`
	ExecutedCount             uint64 `json:"executed_count"`
}

// Abs returns the absolute value of a signed magnitude as uint64.
// math.MinInt64 cannot be negated in int64 space, so it maps directly to
// 1<<63 (one more than the largest positive value) instead.
func Abs(v int64) uint64 {
	if v == math.MinInt64 {
		return 1 << 63
	}
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}
