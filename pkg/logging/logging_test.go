package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/goliatone/go-formtags/pkg/logging"
)

func TestSetupLevels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	cases := []struct {
		verbosity int
		want      zerolog.Level
	}{
		{-1, zerolog.WarnLevel},
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{5, zerolog.TraceLevel},
	}
	for _, tc := range cases {
		logging.Setup(logging.Options{Verbosity: tc.verbosity, Output: &bytes.Buffer{}})
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("verbosity %d: level = %s, want %s", tc.verbosity, got, tc.want)
		}
	}
}

func TestGetLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logging.Setup(logging.Options{Verbosity: 1, Output: &buf})

	logger := logging.GetLogger("formtags.test")
	logger.Info().Str("form", "contact").Msg("rendered")
	logger.Debug().Msg("hidden at info level")

	out := buf.String()
	for _, want := range []string{"rendered", "component=formtags.test", "form=contact"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, "hidden at info level") {
		t.Fatalf("debug message leaked at info level: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour codes for a buffer: %q", out)
	}

	log.Warn().Msg("global")
	if !strings.Contains(buf.String(), "global") {
		t.Fatalf("expected global logger to share the output")
	}
}
