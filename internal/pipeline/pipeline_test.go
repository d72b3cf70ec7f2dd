package pipeline_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/derickschaefer/liftoff/internal/model"
	"github.com/derickschaefer/liftoff/internal/pipeline"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// jsonl joins lines with newlines and appends a trailing newline.
func jsonl(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// ─── ReadLaunches ─────────────────────────────────────────────────────────────

func TestReadBasic(t *testing.T) {
	input := jsonl(
		`{"launch_id":"a","mission_name":"FalconSat","launch_date":"2006-03-24T22:30:00.000Z","status":"failed"}`,
		`{"launch_id":"b","mission_name":"Demo-2","launch_date":"2020-05-30T19:22:00.000Z","status":"success"}`,
	)
	launches, err := pipeline.ReadLaunches(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(launches) != 2 {
		t.Fatalf("expected 2 launches, got %d", len(launches))
	}
	if launches[0].MissionName != "FalconSat" || launches[0].Status != model.StatusFailed {
		t.Errorf("launch 0: got %+v", launches[0])
	}
}

func TestReadSkipsBlankAndCommentLines(t *testing.T) {
	input := jsonl(
		`// exported by liftoff`,
		``,
		`{"launch_id":"a","status":"success"}`,
		`   `,
		`{"launch_id":"b","status":"upcoming"}`,
	)
	launches, err := pipeline.ReadLaunches(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(launches) != 2 {
		t.Errorf("expected 2 launches, got %d", len(launches))
	}
}

func TestReadMissingStatusBecomesUnknown(t *testing.T) {
	launches, err := pipeline.ReadLaunches(strings.NewReader(`{"launch_id":"a"}` + "\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if launches[0].Status != model.StatusUnknown {
		t.Errorf("Status: expected unknown, got %q", launches[0].Status)
	}
}

func TestReadInvalidJSONReportsLine(t *testing.T) {
	input := jsonl(
		`{"launch_id":"a"}`,
		`{not json}`,
	)
	_, err := pipeline.ReadLaunches(strings.NewReader(input))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line 2 error, got %v", err)
	}
}

func TestReadMissingIDReportsLine(t *testing.T) {
	_, err := pipeline.ReadLaunches(strings.NewReader(jsonl(`{"mission_name":"x"}`)))
	if err == nil || !strings.Contains(err.Error(), "line 1: missing launch_id") {
		t.Errorf("expected missing launch_id error, got %v", err)
	}
}

func TestReadEmptyInput(t *testing.T) {
	_, err := pipeline.ReadLaunches(strings.NewReader(""))
	if err == nil {
		t.Error("expected error for empty input")
	}
}

func TestReadJSONArray(t *testing.T) {
	input := "\n  [{\"launch_id\":\"a\",\"status\":\"success\"},{\"launch_id\":\"b\",\"status\":\"weird\"}]\n"
	launches, err := pipeline.ReadLaunches(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(launches) != 2 {
		t.Fatalf("expected 2 launches, got %d", len(launches))
	}
	if launches[1].Status != model.StatusUnknown {
		t.Errorf("launch b: expected unknown, got %q", launches[1].Status)
	}
}

// ─── WriteJSONL ───────────────────────────────────────────────────────────────

func TestWriteThenRead(t *testing.T) {
	in := []model.Launch{
		{ID: "a", MissionName: "Crew-9 & friends", RocketName: "Falcon 9", Status: model.StatusUpcoming, Payloads: []string{"Dragon"}},
		{ID: "b", MissionName: "Starlink <6-1>", Status: model.StatusSuccess},
	}
	var buf bytes.Buffer
	if err := pipeline.WriteJSONL(&buf, in); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	lines := nonEmptyLines(buf.String())
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"Crew-9 & friends"`) {
		t.Errorf("HTML should not be escaped: %s", lines[0])
	}

	out, err := pipeline.ReadLaunches(&buf)
	if err != nil {
		t.Fatalf("ReadLaunches: %v", err)
	}
	if out[0].MissionName != in[0].MissionName || out[0].Payloads[0] != "Dragon" {
		t.Errorf("round-trip mismatch: %+v", out[0])
	}
}
