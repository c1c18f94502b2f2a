package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var console, file bytes.Buffer
	l := NewWriterLogger("protocol", &console, &file, WARN, DEBUG)

	l.Trace("trace %d", 1)
	l.Debug("debug %d", 2)
	l.Info("info %d", 3)
	l.Error("error %d", 4)

	// В консоль попадает только ERROR (порог WARN)
	assert.NotContains(t, console.String(), "info 3")
	assert.Contains(t, console.String(), "[ERROR] [protocol] error 4")

	// В файл - всё начиная с DEBUG
	assert.NotContains(t, file.String(), "trace 1")
	assert.Contains(t, file.String(), "[DEBUG] [protocol] debug 2")
	assert.Contains(t, file.String(), "[INFO] [protocol] info 3")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, TRACE, ParseLevel("trace"))
	assert.Equal(t, WARN, ParseLevel(" Warning "))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}

func TestHexDumpTruncates(t *testing.T) {
	assert.Equal(t, "No data", HexDump(nil))

	data := bytes.Repeat([]byte{0xAB}, 1000)
	dump := HexDump(data)
	// 256 байт = 16 строк по 16 байт
	assert.Equal(t, 16, strings.Count(dump, "\n"))
}

func TestManagerRegisterAndLevels(t *testing.T) {
	var console bytes.Buffer
	lm := &LoggerManager{loggers: make(map[string]*Logger)}
	lm.Register("sync", NewWriterLogger("sync", &console, nil, INFO, INFO))

	require.NoError(t, lm.SetLogLevel("sync", ERROR, ERROR))
	l := lm.MustGetLogger("sync")
	l.Warn("hidden")
	l.Error("shown")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
	assert.Error(t, lm.SetLogLevel("missing", INFO, INFO))
	assert.Equal(t, []string{"sync"}, lm.ListComponents())
}
