package fluxio

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame() Frame {
	return Frame{
		Times: []time.Time{at(0), at(3)},
		Columns: []Column{
			{Name: "FluxNET NEE (kgC m-2 s-1)", Values: []float64{3.0025e-08, math.NaN()}},
			{Name: "MiCASA NEE (kg m-2 s-1)", Values: []float64{-1.5e-08, 2e-09}},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "US-TEST_micasa.csv")
	require.NoError(t, WriteCSV(testFrame(), path, "time"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "time,FluxNET NEE (kgC m-2 s-1),MiCASA NEE (kg m-2 s-1)\n" +
		"2020-01-01 00:00:00,3.0025e-08,-1.5e-08\n" +
		"2020-01-01 03:00:00,,2e-09\n"
	assert.Equal(t, want, string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteCSVQuotesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quoted.csv")
	frame := Frame{
		Times: []time.Time{at(0)},
		Columns: []Column{
			{Name: "FluxNET NEE (g C, m-2)", Values: []float64{1}},
			{Name: `MiCASA "NPP" (kg m-2 s-1)`, Values: []float64{2}},
		},
	}
	require.NoError(t, WriteCSV(frame, path, "time"))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "time,\"FluxNET NEE (g C, m-2)\",\"MiCASA \"\"NPP\"\" (kg m-2 s-1)\"\n"+
		"2020-01-01 00:00:00,1,2\n", string(got))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"time", frame.Columns[0].Name, frame.Columns[1].Name}, records[0])
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "US-TEST_micasa.parquet")
	require.NoError(t, WriteParquet(testFrame(), path))

	rows, err := parquet.ReadFile[Row](path)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Row{TimeMs: at(3).UnixMilli(), Column: "MiCASA NEE (kg m-2 s-1)", Value: 2e-09}, rows[3])
	assert.True(t, math.IsNaN(rows[1].Value))
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "US-TEST_micasa.json")
	m := Manifest{Site: "US-TEST", Latitude: 40, Longitude: -88, Variable: "NEE", Rows: 8, CreatedAt: time.Date(2024, 10, 7, 13, 35, 0, 0, time.UTC)}
	require.NoError(t, WriteManifest(m, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Manifest
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "US-TEST", got.Site)
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt))
}

func TestWriteAtomicFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	err := writeAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return os.ErrInvalid
	})
	require.ErrorIs(t, err, os.ErrInvalid)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func writeString(s string) func(w io.Writer) error {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func TestBatchCommit(t *testing.T) {
	dir := t.TempDir()
	var b Batch
	require.NoError(t, b.Add(filepath.Join(dir, "a.csv"), writeString("a")))
	require.NoError(t, b.Add(filepath.Join(dir, "sub", "b.json"), writeString("b")))

	_, err := os.Stat(filepath.Join(dir, "a.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist, "file visible before commit")

	paths, err := b.Commit()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "sub", "b.json")}, paths)
	got, err := os.ReadFile(filepath.Join(dir, "sub", "b.json"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))
}

func TestBatchCommitRollsBack(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "b.csv")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "keep"), 0o755))

	var b Batch
	require.NoError(t, b.Add(filepath.Join(dir, "a.csv"), writeString("a")))
	require.NoError(t, b.Add(blocked, writeString("b")))
	require.NoError(t, b.Add(filepath.Join(dir, "c.csv"), writeString("c")))

	paths, err := b.Commit()
	require.Error(t, err)
	assert.Empty(t, paths)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.csv", entries[0].Name())
}

func TestBatchDiscard(t *testing.T) {
	dir := t.TempDir()
	var b Batch
	require.NoError(t, b.Add(filepath.Join(dir, "a.csv"), writeString("a")))
	require.NoError(t, b.Discard())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
