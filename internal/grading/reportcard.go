package grading

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Average rounds to one decimal, matching how grades are shown to parents.
func Average(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	avg := sum / float64(len(scores))
	return float64(int(avg*10+0.5)) / 10
}

// RenderDocument produces the report-card document handed to the storage
// gateway. Plain text, criteria in stable order.
func RenderDocument(studentName, gradeGroup, period string, scores map[string]float64, average float64, observations string) *bytes.Buffer {
	buf := &bytes.Buffer{}
	fmt.Fprintln(buf, "ESCUELA MARIANO ESCOBEDO")
	fmt.Fprintln(buf, "Boleta de Calificaciones")
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "Alumno:  %s\n", studentName)
	fmt.Fprintf(buf, "Grado:   %s\n", gradeGroup)
	fmt.Fprintf(buf, "Periodo: %s\n", period)
	fmt.Fprintf(buf, "Fecha:   %s\n", time.Now().Format("02/01/2006"))
	fmt.Fprintln(buf)

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(buf, "%-40s %5.1f\n", name, scores[name])
	}
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "%-40s %5.1f\n", "PROMEDIO GENERAL", average)

	if observations != "" {
		fmt.Fprintln(buf)
		fmt.Fprintln(buf, "Observaciones:")
		fmt.Fprintln(buf, observations)
	}
	return buf
}

// DocumentFilename mirrors the original naming scheme for stored boletas.
func DocumentFilename(gradeGroup, studentName string, now time.Time) string {
	name := strings.ReplaceAll(studentName, " ", "_")
	return fmt.Sprintf("boleta_%s_%s_%s.txt", gradeGroup, name, now.Format("20060102_150405"))
}
