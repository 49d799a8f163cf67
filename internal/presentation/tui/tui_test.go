package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBannerInfo_Mode(t *testing.T) {
	assert.Equal(t, "live", BannerInfo{}.Mode())
	assert.Equal(t, "dry-run", BannerInfo{DryRun: true}.Mode())
	assert.Equal(t, "demo", BannerInfo{DryRun: true, Demo: true}.Mode())
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, BannerInfo{Version: "0.3.0", Network: "test", DryRun: true})
	out := buf.String()
	assert.Contains(t, out, "v0.3.0")
	assert.Contains(t, out, "network=test")
	assert.Contains(t, out, "dry-run")
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(60)
	require.NoError(t, err)
	out, err := render("Done.\n\n```\nbalance: 1.5\n```")
	require.NoError(t, err)
	assert.Contains(t, out, "Done.")
	assert.Contains(t, out, "balance")
}
