package fluxio

import (
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"
)

// Row is the long-format parquet record: one value of one column.
type Row struct {
	TimeMs int64   `parquet:"time_ms"`
	Column string  `parquet:"column,dict"`
	Value  float64 `parquet:"value"`
}

func WriteParquet(frame Frame, path string) error {
	if err := writeAtomic(path, func(w io.Writer) error {
		return EncodeParquet(w, frame)
	}); err != nil {
		return err
	}
	logrus.Infof("Wrote %d columns x %d rows to %s", len(frame.Columns), frame.Len(), path)
	return nil
}

func EncodeParquet(out io.Writer, frame Frame) error {
	schema := parquet.SchemaOf(new(Row))
	writer := parquet.NewGenericWriter[Row](out, schema, parquet.Compression(&parquet.Snappy))

	rows := make([]Row, 0, frame.Len())
	for _, col := range frame.Columns {
		rows = rows[:0]
		for i, t := range frame.Times {
			rows = append(rows, Row{TimeMs: t.UnixMilli(), Column: col.Name, Value: col.Values[i]})
		}
		if _, err := writer.Write(rows); err != nil {
			return err
		}
	}
	return writer.Close()
}
