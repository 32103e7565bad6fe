package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew_ParsesLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("loud").GetLevel())
}

func TestNewWithOutput_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput("warn", &buf)

	l.Info("dropped")
	l.WithField("list_id", 7).Warn("mixed")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "list_id=7")
	assert.Contains(t, out, "mixed")
}
