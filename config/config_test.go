package config

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullConfig(t *testing.T) {
	raw := []byte(`
admin: "0x00000000000000000000000000000000000000aa"
base_uri: "https://example.com/assets/{id}.json"
uri_mode: "per-asset"
wal_dir: "/tmp/ledger-wal"
listen: ":9090"
tls_domains:
  - "ledger.example.com"
genesis:
  - metadata: "https://example.com/assets/0.json"
    recipient: "0x00000000000000000000000000000000000000bb"
    amount: "20"
`)

	cfg, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, common.HexToAddress("0xaa"), cfg.Admin)
	assert.Equal(t, "https://example.com/assets/{id}.json", cfg.BaseURI)
	assert.Equal(t, "per-asset", cfg.URIMode)
	assert.Equal(t, "/tmp/ledger-wal", cfg.WALDir)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, []string{"ledger.example.com"}, cfg.TLSDomains)

	require.Len(t, cfg.Genesis, 1)
	assert.Equal(t, common.HexToAddress("0xbb"), cfg.Genesis[0].Recipient)
	assert.Equal(t, "20", cfg.Genesis[0].Amount.String())
}

func TestParseDefaults(t *testing.T) {
	raw := []byte(`
admin: "0x00000000000000000000000000000000000000aa"
base_uri: "dummy url"
`)

	cfg, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "global", cfg.URIMode)
	assert.Equal(t, "./wal/events", cfg.WALDir)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Empty(t, cfg.Genesis)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "bad admin address",
			raw:  `{admin: "not-an-address", base_uri: "u"}`,
		},
		{
			name: "bad uri mode",
			raw:  `{admin: "0x00000000000000000000000000000000000000aa", uri_mode: "sideways"}`,
		},
		{
			name: "bad genesis recipient",
			raw: `{admin: "0x00000000000000000000000000000000000000aa",
genesis: [{metadata: m, recipient: nope, amount: "1"}]}`,
		},
		{
			name: "negative genesis amount",
			raw: `{admin: "0x00000000000000000000000000000000000000aa",
genesis: [{metadata: m, recipient: "0x00000000000000000000000000000000000000bb", amount: "-5"}]}`,
		},
		{
			name: "fractional genesis amount",
			raw: `{admin: "0x00000000000000000000000000000000000000aa",
genesis: [{metadata: m, recipient: "0x00000000000000000000000000000000000000bb", amount: "1.5"}]}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw))
			require.Error(t, err)
		})
	}
}
