package book

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	orig := logger
	defer SetLogger(orig)

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, nil))
	SetLogger(custom)
	assert.Same(t, custom, logger)

	SetLogger(nil)
	assert.Same(t, custom, logger, "nil does not replace the logger")

	logger.Info("routed")
	assert.Contains(t, buf.String(), "routed")
}
