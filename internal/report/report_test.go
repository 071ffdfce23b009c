package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/visitpivot/internal/analysis"
	"github.com/KaramelBytes/visitpivot/internal/utils"
)

func visitRow(specialty, payer, date string) []any {
	row := make([]any, 10)
	row[analysis.SpecialtyColumn] = specialty
	row[analysis.PayerColumn] = payer
	row[analysis.DateColumn] = date
	return row
}

func sampleResult(t *testing.T) *analysis.Result {
	t.Helper()
	tbl := analysis.Table{
		visitRow("Cardiologia ", "Amil Saúde", "01/02/2024"),
		visitRow("Cardiologia", "amil", "01/02/2024"),
		visitRow("Cardiologia", "Bradesco", "02/02/2024"),
		visitRow("Pediatria", "Unimed", "02/02/2024"),
		visitRow("Pediatria", "Unimed", "02/02/2024"),
		visitRow("Pediatria", "", "02/02/2024"),
		visitRow("Pediatria", "Unimed", "garbage"),
	}
	opt := analysis.DefaultOptions()
	opt.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	res, err := analysis.Run(context.Background(), tbl, opt)
	require.NoError(t, err)
	return res
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleResult(t), RenderOptions{Name: "export.xlsx"})

	assert.Contains(t, md, "File: export.xlsx")
	assert.Contains(t, md, "Rows: 7\n")
	assert.Contains(t, md, "Visits counted: 5")
	assert.Contains(t, md, "| Specialty | Payer group | 01/02/2024 | 02/02/2024 | Total |")
	assert.Contains(t, md, "| CARDIOLOGIA | GROUP | 2 | 0 | 2 |")
	assert.Contains(t, md, "| CARDIOLOGIA | NON_GROUP | 0 | 1 | 1 |")
	assert.Contains(t, md, "| PEDIATRIA | NON_GROUP | 0 | 2 | 2 |")
	assert.Contains(t, md, "| **Total** |  | 2 | 3 | 5 |")
	assert.Contains(t, md, "- Busiest day: 02/02/2024 with 3 patients")
	assert.Contains(t, md, "- Quietest day: 01/02/2024 with 2 patients")
	assert.Contains(t, md, "- 2 rows dropped (empty payer 1, invalid date 1)")
}

func TestMarkdownCustomDateFormat(t *testing.T) {
	md := Markdown(sampleResult(t), RenderOptions{DateFormat: "2006-01-02"})
	assert.Contains(t, md, "| 2024-02-01 | 2024-02-02 |")
}

func TestMarkdownEmptyResult(t *testing.T) {
	md := Markdown(&analysis.Result{}, RenderOptions{})
	assert.Contains(t, md, "No visits left after filtering.")
	assert.NotContains(t, md, "[DAILY VOLUME]")
	assert.NotContains(t, md, "[NOTES]")
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultXLSXName)
	require.NoError(t, WriteXLSX(path, sampleResult(t), RenderOptions{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{PivotSheet, VolumeSheet}, f.GetSheetList())

	rows, err := f.GetRows(PivotSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Specialty", "Payer group", "01/02/2024", "02/02/2024", "Total"}, rows[0])
	assert.Equal(t, []string{"PEDIATRIA", "NON_GROUP", "0", "2", "2"}, rows[3])

	vol, err := f.GetRows(VolumeSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Date", "Patients"}, {"01/02/2024", "2"}, {"02/02/2024", "3"}}, vol)
}

func TestWriteXLSXEmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(path, &analysis.Result{}, RenderOptions{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(PivotSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Specialty", "Payer group", "Total"}}, rows)
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult(t)

	withBOM := filepath.Join(dir, "bom.csv")
	require.NoError(t, WriteCSV(withBOM, res, RenderOptions{BOM: true, Comma: ';'}))
	b, err := os.ReadFile(withBOM)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, utf8BOM))

	r := csv.NewReader(bytes.NewReader(b[len(utf8BOM):]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"CARDIOLOGIA", "GROUP", "2", "0", "2"}, records[1])

	plain := filepath.Join(dir, "plain.csv")
	require.NoError(t, WriteCSV(plain, res, RenderOptions{}))
	b, err = os.ReadFile(plain)
	require.NoError(t, err)
	assert.False(t, bytes.HasPrefix(b, utf8BOM))
	assert.Contains(t, string(b), "Specialty,Payer group,01/02/2024,02/02/2024,Total\n")
}

func TestWriteJSONAndYAML(t *testing.T) {
	res := sampleResult(t)

	var jb bytes.Buffer
	require.NoError(t, WriteJSON(&jb, res))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(jb.Bytes(), &decoded))
	assert.Equal(t, res.RunID, decoded["run_id"])
	assert.Contains(t, jb.String(), `"category": "GROUP"`)
	assert.Contains(t, jb.String(), `"2024-02-01"`)
	pretty, err := utils.PrettyJSON(res)
	require.NoError(t, err)
	assert.Equal(t, string(pretty)+"\n", jb.String())

	var yb bytes.Buffer
	require.NoError(t, WriteYAML(&yb, res))
	var y struct {
		RunID string `yaml:"run_id"`
		Stats struct {
			Kept int `yaml:"kept"`
		} `yaml:"stats"`
		Volume struct {
			Max struct {
				Date  string `yaml:"date"`
				Total int    `yaml:"total"`
			} `yaml:"max"`
		} `yaml:"volume"`
	}
	require.NoError(t, yaml.Unmarshal(yb.Bytes(), &y))
	assert.Equal(t, res.RunID, y.RunID)
	assert.Equal(t, 5, y.Stats.Kept)
	assert.Equal(t, "2024-02-02", y.Volume.Max.Date)
	assert.Equal(t, 3, y.Volume.Max.Total)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult(t)
	for _, format := range []string{FormatMarkdown, FormatCSV, FormatXLSX, FormatYAML, FormatJSON} {
		path := filepath.Join(dir, "out"+Ext(format))
		require.NoError(t, WriteFile(path, format, res, RenderOptions{}), format)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size(), format)
	}
	assert.Error(t, WriteFile(filepath.Join(dir, "x"), "html", res, RenderOptions{}))
}
