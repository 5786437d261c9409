package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Setup("debug", "json", &buf)
	log.Info().Str("paper_id", "p1").Msg("loaded")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["paper_id"] != "p1" || line["message"] != "loaded" {
		t.Fatalf("unexpected fields: %v", line)
	}
	if _, ok := line["caller"]; !ok {
		t.Fatal("caller field missing")
	}
}

func TestSetupBadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	_ = Setup("loud", "json", &buf)
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("global level = %v, want info", zerolog.GlobalLevel())
	}
}
