package common

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	}()

	Logger().Debug().Msg("hidden")
	Logger().Info().Str("file", "a.jpg").Msg("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("Debug lines should be dropped by default")
	}
	if !strings.Contains(buf.String(), `"file":"a.jpg"`) {
		t.Errorf("Expected info line with fields, got %q", buf.String())
	}

	SetVerbose(true)
	Logger().Debug().Msg("details")
	if !strings.Contains(buf.String(), "details") {
		t.Error("Expected debug line in verbose mode")
	}

	// The level survives a change of output.
	var other bytes.Buffer
	SetOutput(&other)
	Logger().Debug().Msg("still verbose")
	if !strings.Contains(other.String(), "still verbose") {
		t.Error("Expected verbose level to survive SetOutput")
	}
}
