package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 24*time.Hour, c.Protocol.BrokenThreshold)
	assert.Equal(t, 30*time.Second, c.Protocol.DedupWindow)
	assert.Equal(t, 20, c.Protocol.MaxSessionLag)
}

func TestLoad_EnvOverridesNestedKeys(t *testing.T) {
	t.Setenv("BOARDLINE_LOG_LEVEL", "debug")
	t.Setenv("BOARDLINE_PROTOCOL_BROKENTHRESHOLD", "1h")
	t.Setenv("BOARDLINE_PROTOCOL_DEDUPWINDOW", "45s")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, time.Hour, c.Protocol.BrokenThreshold)
	assert.Equal(t, 45*time.Second, c.Protocol.DedupWindow)
}
