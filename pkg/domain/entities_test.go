package domain

import (
	"encoding/json"
	"testing"
)

func TestValueDisplay(t *testing.T) {
	cases := []struct {
		name string
		in   Value
		want string
	}{
		{"null", NullValue(), ""},
		{"string", StringValue("tissue"), "tissue"},
		{"int", IntValue(42), "42"},
		{"negative int", IntValue(-7), "-7"},
		{"list", ListValue(StringValue("a"), StringValue("b")), "a; b"},
		{"empty list", ListValue(), ""},
	}
	for _, tc := range cases {
		if got := tc.in.Display(); got != tc.want {
			t.Fatalf("%s: Display() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   Value
		json string
	}{
		{"null", NullValue(), "null"},
		{"string", StringValue("blood draw"), `"blood draw"`},
		{"int", IntValue(5000), "5000"},
		{"list", ListValue(StringValue("x"), IntValue(3)), `["x",3]`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.in)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.name, err)
		}
		if string(data) != tc.json {
			t.Fatalf("%s: marshal = %s, want %s", tc.name, data, tc.json)
		}
		var out Value
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.name, err)
		}
		if !out.Equal(tc.in) {
			t.Fatalf("%s: round trip changed value: %#v", tc.name, out)
		}
	}
}

func TestA1(t *testing.T) {
	cases := []struct {
		row, col int
		want     string
	}{
		{1, 1, "A1"},
		{6, 3, "C6"},
		{10, 26, "Z10"},
		{2, 27, "AA2"},
		{7, 52, "AZ7"},
	}
	for _, tc := range cases {
		if got := A1(tc.row, tc.col); got != tc.want {
			t.Fatalf("A1(%d, %d) = %q, want %q", tc.row, tc.col, got, tc.want)
		}
	}
}

func TestCellAddress(t *testing.T) {
	ws := &WorksheetData{
		SourceColumns:   []string{"dataset_id", "", "title"},
		SourceRowsStart: 5,
	}
	got, ok := ws.CellAddress(1, "title")
	if !ok || got != "C6" {
		t.Fatalf("CellAddress(1, title) = %q, %v; want C6, true", got, ok)
	}
	if _, ok := ws.CellAddress(1, "missing"); ok {
		t.Fatalf("expected missing column to report false")
	}
}

func TestValidBionetwork(t *testing.T) {
	if !ValidBionetwork("") {
		t.Fatalf("empty bionetwork should be valid")
	}
	if !ValidBionetwork("gut") {
		t.Fatalf("gut should be valid")
	}
	if ValidBionetwork("brain") {
		t.Fatalf("brain should be invalid")
	}
}

func TestSummaryWithoutEntities(t *testing.T) {
	s := SummaryWithoutEntities([]EntityType{EntityDataset, EntityDonor}, 1)
	if s.ErrorCount != 1 {
		t.Fatalf("error count = %d, want 1", s.ErrorCount)
	}
	if len(s.Counts) != 2 {
		t.Fatalf("counts len = %d, want 2", len(s.Counts))
	}
	for entity, count := range s.Counts {
		if count != nil {
			t.Fatalf("count for %s = %v, want nil", entity, count)
		}
	}
}
