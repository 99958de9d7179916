package attendance

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// BuildCSV renders attendance records into the CSV document that gets
// handed to the storage gateway. Returns the document plus the distinct
// student count for the report metadata row.
func BuildCSV(gradeGroup, fromDay, toDay string, records []Record) (*bytes.Buffer, int, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"grade_group", "from", "to"}
	if err := w.Write(header); err != nil {
		return nil, 0, err
	}
	if err := w.Write([]string{gradeGroup, fromDay, toDay}); err != nil {
		return nil, 0, err
	}
	if err := w.Write([]string{"day", "student", "status"}); err != nil {
		return nil, 0, err
	}

	students := map[string]struct{}{}
	for _, r := range records {
		students[r.StudentID] = struct{}{}
		if err := w.Write([]string{r.Day, r.StudentName, r.Status}); err != nil {
			return nil, 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	return buf, len(students), nil
}

// ReportFilename builds a stable, collision-resistant name for a report;
// the suffix keeps two reports for the same group and range distinct.
func ReportFilename(gradeGroup, fromDay, suffix string) string {
	return fmt.Sprintf("asistencia_%s_%s_%s.txt", gradeGroup, fromDay, suffix)
}
