package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	require.Equal(t, logrus.FatalLevel, Level(-3))
	require.Equal(t, logrus.FatalLevel, Level(0))
	require.Equal(t, logrus.InfoLevel, Level(3))
	require.Equal(t, logrus.TraceLevel, Level(5))
	require.Equal(t, logrus.TraceLevel, Level(42))
}

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	require.NoError(t, setup(l, Config{Verbosity: 4, Format: "json"}, &buf))

	l.WithField("module", "gateway").Debug("hello")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "hello", rec["msg"])
	require.Equal(t, "gateway", rec["module"])
	require.Equal(t, "debug", rec["level"])
}

func TestSetup_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	require.NoError(t, setup(l, Config{Verbosity: 2, Format: "text"}, &buf))

	l.Info("hidden")
	require.Zero(t, buf.Len())
	l.Warn("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestSetup_UnknownFormat(t *testing.T) {
	require.Error(t, setup(logrus.New(), Config{Format: "xml"}, &bytes.Buffer{}))
}
