package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Event", "Delta", "Points"}
	rows := [][]string{
		{"completed", "+1", "4"},
		{"fed pet", "-8", "12"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Event     Delta Points" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "completed    +1      4" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "fed pet      -8     12" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Icon", "Name"}, [][]string{{"🍕", "pizza"}}, nil)
	if lines[1] != "🍕   pizza" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}
