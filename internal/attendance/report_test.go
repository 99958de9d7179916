package attendance

import (
	"encoding/csv"
	"strings"
	"testing"
)

func TestBuildCSV(t *testing.T) {
	records := []Record{
		{StudentID: "s1", StudentName: "Ana Torres", Day: "2026-03-02", Status: StatusPresent},
		{StudentID: "s2", StudentName: "Luis Mora", Day: "2026-03-02", Status: StatusAbsent},
		{StudentID: "s1", StudentName: "Ana Torres", Day: "2026-03-03", Status: StatusLate},
	}
	buf, students, err := BuildCSV("3A", "2026-03-02", "2026-03-06", records)
	if err != nil {
		t.Fatalf("BuildCSV: %v", err)
	}
	if students != 2 {
		t.Fatalf("student count = %d, want 2", students)
	}
	rows, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	// header + range row + column row + one row per record
	if len(rows) != 3+len(records) {
		t.Fatalf("got %d rows, want %d", len(rows), 3+len(records))
	}
	if rows[1][0] != "3A" || rows[1][1] != "2026-03-02" {
		t.Fatalf("range row wrong: %v", rows[1])
	}
	if rows[3][1] != "Ana Torres" || rows[3][2] != StatusPresent {
		t.Fatalf("record row wrong: %v", rows[3])
	}
}

func TestBuildCSVEmpty(t *testing.T) {
	buf, students, err := BuildCSV("3A", "2026-03-02", "", nil)
	if err != nil {
		t.Fatalf("BuildCSV: %v", err)
	}
	if students != 0 {
		t.Fatalf("student count = %d, want 0", students)
	}
	if got := len(strings.Split(strings.TrimSpace(buf.String()), "\n")); got != 3 {
		t.Fatalf("empty report should still carry its header rows, got %d lines", got)
	}
}

func TestReportFilename(t *testing.T) {
	got := ReportFilename("3A", "2026-03-02", "a1b2c3d4")
	if got != "asistencia_3A_2026-03-02_a1b2c3d4.txt" {
		t.Fatalf("got %q", got)
	}
}
