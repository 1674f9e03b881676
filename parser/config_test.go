// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.MaxDepth = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Severities = map[Code]Severity{"no-such-code": Error}
	assert.Error(t, cfg.Validate())
}

func TestParseOptions(t *testing.T) {
	cfg, err := ParseOptions(map[string]string{
		"trim-text":          "",
		"dedupe-attributes":  "true",
		"allow-spread-attributes": "false",
		"max-depth":          "8",
	})
	require.NoError(t, err)

	assert.True(t, cfg.TrimText)
	assert.True(t, cfg.DedupeAttributes)
	assert.False(t, cfg.AllowSpreadAttributes)
	assert.Equal(t, 8, cfg.MaxDepth)

	_, err = ParseOptions(map[string]string{"frobnicate": "true"})
	assert.ErrorContains(t, err, "unknown option")

	_, err = ParseOptions(map[string]string{"trim-text": "yes"})
	assert.ErrorContains(t, err, "expected true or false")

	_, err = ParseOptions(map[string]string{"max-depth": "0"})
	assert.ErrorContains(t, err, "at least 1")
}
