package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithServiceAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Output: &buf, Service: "table-booking"})

	ctx := WithRequestID(context.Background(), "req-42")
	log.WithCtx(ctx).Debug("booking created", "booking_id", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "booking created", line["msg"])
	assert.Equal(t, "table-booking", line["service"])
	assert.Equal(t, "req-42", line["request_id"])
	assert.EqualValues(t, 7, line["booking_id"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: FormatText, Output: &buf})

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
