package rpcconfig

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	v := viper.New()
	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), cfg)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	v := viper.New()
	v.Set("log_level", "verbose")
	_, err := Load(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadRejectsZeroMaxMsgLen(t *testing.T) {
	v := viper.New()
	v.Set("max_msg_len", 0)
	_, err := Load(v, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
