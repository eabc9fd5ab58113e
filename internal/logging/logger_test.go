package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warning"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("error"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("trace"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(""))
	assert.Equal(t, logrus.InfoLevel, GetLevel("chatty"))
}

func TestSetup_WritesToFile(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	defer logrus.SetFormatter(&logrus.TextFormatter{})
	defer logrus.SetLevel(logrus.InfoLevel)

	name := filepath.Join(t.TempDir(), "studio")
	Setup(LoggerSetupParams{LogFileName: name, LogLevel: "info", LogFormatJSON: true})

	logrus.WithField("k", "v").Info("hello")

	data, err := os.ReadFile(name + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"k":"v"`)
}
