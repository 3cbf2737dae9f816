package fluxio

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"
)

const TimeLayout = "2006-01-02 15:04:05"

// WriteCSV writes the frame with a leading time column named timeHeader.
func WriteCSV(frame Frame, path string, timeHeader string) error {
	if err := writeAtomic(path, func(w io.Writer) error {
		return EncodeCSV(w, frame, timeHeader)
	}); err != nil {
		return err
	}
	logrus.Infof("Wrote %d rows to %s", frame.Len(), path)
	return nil
}

// EncodeCSV writes the frame as CSV. Fields are quoted when needed and NaN
// is written as an empty field.
func EncodeCSV(out io.Writer, frame Frame, timeHeader string) error {
	w := csv.NewWriter(out)
	header := make([]string, 0, len(frame.Columns)+1)
	header = append(header, timeHeader)
	for _, col := range frame.Columns {
		header = append(header, col.Name)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, t := range frame.Times {
		row[0] = t.Format(TimeLayout)
		for j, col := range frame.Columns {
			row[j+1] = formatValue(col.Values[i])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
