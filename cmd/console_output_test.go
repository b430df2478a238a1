package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestLogger(t *testing.T) (zerolog.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv("UIBUILD_DEBUG", "")

	out := &bytes.Buffer{}
	return zerolog.New(NewConsoleWriter(out)), out
}

func TestConsoleWriterPrefixesTask(t *testing.T) {
	logger, out := newTestLogger(t)

	logger.Info().Str("task", "css").Msg("wrote dist/css/ui.css")
	assert.Equal(t, "css: wrote dist/css/ui.css\n", out.String())
}

func TestConsoleWriterMarksCommands(t *testing.T) {
	logger, out := newTestLogger(t)

	logger.Info().Str("task", "elm").Bool("command", true).Msg("elm make src/Main.elm")
	assert.Equal(t, "elm: $ elm make src/Main.elm\n", out.String())
}

func TestConsoleWriterPrintsErrors(t *testing.T) {
	logger, out := newTestLogger(t)

	logger.Error().Err(errors.New("exit status 1")).Msg("Build failed")
	assert.Contains(t, out.String(), "Error: Build failed\n")
	assert.Contains(t, out.String(), "exit status 1")
}

func TestConsoleWriterRejectsGarbage(t *testing.T) {
	w := NewConsoleWriter(&bytes.Buffer{})

	_, err := w.Write([]byte("not json"))
	assert.Error(t, err)
}
