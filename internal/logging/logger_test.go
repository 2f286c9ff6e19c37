package logging

import (
	"testing"

	"github.com/mikey/phishdash/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger_Level(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("logging.level", "warn")
	v.Set("logging.format", "console")

	logger, err := InitLogger(config.NewFromViper(v))
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestInitConsoleLogger_Verbose(t *testing.T) {
	logger, err := InitConsoleLogger(true, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = InitConsoleLogger(false, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestParseLevel_Unknown(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud"))
}
