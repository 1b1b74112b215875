package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogger_JSONOutputCarriesScopedFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Format: FormatJSON, Output: &buf})

	l.WithPatch(3).WithTick(7).Info("synchronized")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "synchronized", decoded["message"])
	require.EqualValues(t, 3, decoded["patch_id"])
	require.EqualValues(t, 7, decoded["tick"])
}

func TestLogger_LevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Format: FormatJSON, Output: &buf})

	l.Info("should not appear")
	require.Empty(t, buf.Bytes())

	l.Warn("should appear")
	require.NotEmpty(t, buf.Bytes())
}

func TestLogger_ErrorAttachesErrField(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Format: FormatJSON, Output: &buf})

	l.Error("sync failed", errBoom)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, errBoom.Error(), decoded["error"])
}

var errBoom = boomError{}

type boomError struct{}

func (boomError) Error() string { return "boom" }
