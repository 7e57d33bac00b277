package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeRejectsMissingConfigFile(t *testing.T) {
	_, err := executeCommand(t, "serve", "-c", "/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	path := writeConfigFile(t, `
check_interval: 0
timeout: 5
servers:
  - name: web
    host: example.com
    port: 443
    protocol: tcp
`)

	_, err := executeCommand(t, "serve", "-c", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check_interval")
}
