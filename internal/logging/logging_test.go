package logging

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	log, err := New("debug", false)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("warn", true)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))

	_, err = New("loud", false)
	assert.Error(t, err)
}

func TestGetReqLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fallback := zap.NewNop().Sugar()

	assert.Same(t, fallback, GetReqLogger(nil, fallback))

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, fallback, GetReqLogger(c, fallback))

	c.Set(ReqLoggerKey, "not a logger")
	assert.Same(t, fallback, GetReqLogger(c, fallback))

	scoped := zap.NewNop().Sugar().With("correlationID", "abc")
	c.Set(ReqLoggerKey, scoped)
	assert.Same(t, scoped, GetReqLogger(c, fallback))
}
