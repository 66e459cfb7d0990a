package entity

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccount(t *testing.T) {
	account, err := ParseAccount("0x00000000000000000000000000000000000000ab")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xab"), account)

	_, err = ParseAccount("not an address")
	require.Error(t, err)

	_, err = ParseAccount("")
	require.Error(t, err)
}

func TestValidAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		expected bool
	}{
		{name: "zero", amount: decimal.Zero, expected: true},
		{name: "positive integer", amount: decimal.NewFromInt(20), expected: true},
		{name: "large integer", amount: decimal.RequireFromString("123456789012345678901234567890"), expected: true},
		{name: "negative", amount: decimal.NewFromInt(-1), expected: false},
		{name: "fractional", amount: decimal.NewFromFloat(0.5), expected: false},
		{name: "negative fractional", amount: decimal.NewFromFloat(-2.5), expected: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ValidAmount(tc.amount))
		})
	}
}

func TestEventJSONRoundTrip(t *testing.T) {
	account := common.HexToAddress("0xbb")
	ev := NewBurnedEvent(3, account, decimal.NewFromInt(7), []byte("proof"))

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, EventBurned, decoded.Kind)
	assert.Equal(t, uint64(3), decoded.AssetID)
	assert.Equal(t, account, decoded.Account)
	assert.Equal(t, "7", decoded.Amount)
	assert.Equal(t, []byte("proof"), []byte(decoded.Proof))
}

func TestFreezeStatusEventFlagIsExplicit(t *testing.T) {
	account := common.HexToAddress("0xbb")

	for _, frozen := range []bool{true, false} {
		raw, err := json.Marshal(NewFreezeStatusEvent(account, frozen))
		require.NoError(t, err)
		// an unfreeze must be distinguishable from a freeze without
		// defaulting an absent field to false
		assert.Contains(t, string(raw), `"frozen":`+strconv.FormatBool(frozen))
	}
}

func TestVoluntaryBurnHasEmptyProof(t *testing.T) {
	ev := NewBurnedEvent(0, common.HexToAddress("0xbb"), decimal.NewFromInt(1), nil)
	assert.Empty(t, ev.Proof)

	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "proof")
}
