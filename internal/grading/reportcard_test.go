package grading

import (
	"strings"
	"testing"
)

func TestAverage(t *testing.T) {
	cases := []struct {
		scores map[string]float64
		want   float64
	}{
		{nil, 0},
		{map[string]float64{"a": 10}, 10},
		{map[string]float64{"a": 10, "b": 9}, 9.5},
		{map[string]float64{"a": 10, "b": 9, "c": 8}, 9},
		{map[string]float64{"a": 7, "b": 8, "c": 8}, 7.7},
	}
	for _, tc := range cases {
		if got := Average(tc.scores); got != tc.want {
			t.Errorf("Average(%v) = %v, want %v", tc.scores, got, tc.want)
		}
	}
}

func TestRenderDocument(t *testing.T) {
	scores := map[string]float64{"Participación": 9, "Tareas": 8}
	doc := RenderDocument("Ana López", "3A", "Trimestre 1", scores, Average(scores), "Buen avance")
	text := doc.String()

	for _, want := range []string{
		"Boleta de Calificaciones",
		"Ana López",
		"3A",
		"Trimestre 1",
		"Participación",
		"Tareas",
		"PROMEDIO GENERAL",
		"8.5",
		"Buen avance",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("document missing %q:\n%s", want, text)
		}
	}
	// Criteria render in sorted order.
	if strings.Index(text, "Participación") > strings.Index(text, "Tareas") {
		t.Error("criteria not in sorted order")
	}
}
