package utils

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerIsShared(t *testing.T) {
	a := GetLogger("logger-test")
	b := GetLogger("logger-test")
	assert.Same(t, a, b)
}

func TestLoggerFormat(t *testing.T) {
	l := GetLogger("format-test")
	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.colorful = false

	l.Warnf("slot %d", 3)
	line := buf.String()
	assert.Contains(t, line, "format-test[")
	assert.Contains(t, line, "<WARNING>: slot 3\n")

	buf.Reset()
	SetLogLevel(logrus.ErrorLevel)
	l.Infof("hidden")
	assert.Empty(t, buf.String())
	SetLogLevel(logrus.InfoLevel)
}

func TestSetOutFile(t *testing.T) {
	l := GetLogger("outfile-test")
	path := filepath.Join(t.TempDir(), "chunkstore.log")
	require.NoError(t, SetOutFile(path))
	l.Infof("to file")
	assert.True(t, Exists(path))
	assert.Error(t, SetOutFile(filepath.Join(t.TempDir(), "missing", "x.log")))
}

func TestColorize(t *testing.T) {
	assert.Equal(t, "INFO", colorize(logrus.InfoLevel, "INFO"))
	assert.Equal(t, "\033[1;31mERROR\033[0m", colorize(logrus.ErrorLevel, "ERROR"))
}
