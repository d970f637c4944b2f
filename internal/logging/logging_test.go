package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrityFaultFields(t *testing.T) {
	var buf bytes.Buffer
	setup("production", &buf)
	t.Cleanup(func() { setup("production", &bytes.Buffer{}) })

	IntegrityFault("amount_mismatch").Str("txn", "pi_1").Msg("total mismatch")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "integrity", line["fault"])
	assert.Equal(t, "amount_mismatch", line["kind"])
	assert.Equal(t, "pi_1", line["txn"])
	assert.Contains(t, line, "time")
}

func TestDevelopmentIsConsole(t *testing.T) {
	var buf bytes.Buffer
	setup("development", &buf)
	t.Cleanup(func() { setup("production", &bytes.Buffer{}) })

	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
