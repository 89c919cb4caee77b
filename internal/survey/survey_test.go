package survey

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/orgpulse/pulse/internal/model"
)

const leaderQ = "우리 조직의 리더들은 구성원들을 인정하고 격려하며 동기부여한다."

func TestDefaultRegistry(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	assert.Len(t, reg.ScaleQuestions(), 8)
	assert.Len(t, reg.MultiSelectQuestions(), 2)
	assert.True(t, reg.IsCategory("본사/현업"))
	assert.True(t, reg.IsCategory(AgeBandColumn))

	q, ok := reg.Question("리더의 동기부여")
	require.True(t, ok)
	assert.Equal(t, leaderQ, q.Text)
	assert.True(t, q.IsScale())

	for _, q := range reg.MultiSelectQuestions() {
		assert.NotEmpty(t, q.Choices, q.Text)
	}
}

func TestLoadRegistryRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err := LoadRegistry(bad)
	assert.True(t, errors.Is(err, model.Code(model.ErrMalformed)))

	noChoices := filepath.Join(dir, "nochoices.json")
	require.NoError(t, os.WriteFile(noChoices,
		[]byte(`{"questions":[{"text":"q","kind":"multi_select"}]}`), 0o644))
	_, err = LoadRegistry(noChoices)
	assert.True(t, errors.Is(err, model.Code(model.ErrInvalidInput)))
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
		errs   bool
	}{
		{"4점", 4, true, false},
		{" 3점 (보통) ", 3, true, false},
		{"5", 5, true, false},
		{"2.5점", 2.5, true, false},
		{"", 0, false, false},
		{"   ", 0, false, false},
		{"모름", 0, false, true},
		{"점", 0, false, true},
		{"NaN", 0, false, true},
		{"NaN점", 0, false, true},
		{"Inf", 0, false, true},
		{"-Inf점", 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok, err := NormalizeScore(tt.raw)
			if tt.errs {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadCSV(t *testing.T) {
	in := "\ufeff성별, 연령 ,경영진 소통\n남,34,4점\n여,29\n"
	tbl, err := ReadCSV(strings.NewReader(in), "inline.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"성별", "연령", "경영진 소통"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"여", "29", ""}, tbl.Rows[1], "short rows are padded")
}

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"성별", "연령", leaderQ}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"남", "34", "4점"}))

	_, err := f.NewSheet("2차 조사")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("2차 조사", "A1", &[]any{"성별", "근속년수", leaderQ}))
	require.NoError(t, f.SetSheetRow("2차 조사", "A2", &[]any{"여", "8", "2점"}))
	require.NoError(t, f.SetSheetRow("2차 조사", "A3", &[]any{"남"}))

	path := filepath.Join(t.TempDir(), "responses.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadTableWorkbook(t *testing.T) {
	path := writeWorkbook(t)

	first, err := LoadTable(path, "")
	require.NoError(t, err)
	assert.Equal(t, path, first.Source)
	assert.Equal(t, []string{"성별", "연령", leaderQ}, first.Header)
	assert.Equal(t, [][]string{{"남", "34", "4점"}}, first.Rows)

	named, err := LoadTable(path, "2차 조사")
	require.NoError(t, err)
	assert.Equal(t, []string{"성별", "근속년수", leaderQ}, named.Header)
	require.Len(t, named.Rows, 2)
	assert.Equal(t, []string{"여", "8", "2점"}, named.Rows[0])
	assert.Equal(t, []string{"남", "", ""}, named.Rows[1], "short rows are padded")

	_, err = LoadTable(path, "없는 시트")
	assert.ErrorContains(t, err, "없는 시트")
}

func TestLoadWorkbookDataset(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	ds, err := Load(writeWorkbook(t), reg, Options{Sheet: "2차 조사"})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	score, ok := ds.Records[0].Score(leaderQ)
	require.True(t, ok)
	assert.Equal(t, 2.0, score)
	_, ok = ds.Records[1].Score(leaderQ)
	assert.False(t, ok)
	assert.False(t, ds.HasColumn(AgeBandColumn), "no age column, no band")
}

func TestLoadTableUnsupported(t *testing.T) {
	_, err := LoadTable("responses.ods", "")
	assert.True(t, errors.Is(err, model.Code(model.ErrUnsupportedFormat)))
}

func testTable(rows ...string) *Table {
	tbl, err := ReadCSV(strings.NewReader("성별,연령,근속년수,"+leaderQ+"\n"+strings.Join(rows, "\n")), "test.csv")
	if err != nil {
		panic(err)
	}
	return tbl
}

func TestBuild(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	ds, err := Build(testTable("남,34,3,4점", "여,,12,", ",,,"), reg, Options{})
	require.NoError(t, err)

	require.Equal(t, 2, ds.Len(), "blank rows are skipped")
	assert.True(t, ds.HasColumn(AgeBandColumn))

	first := ds.Records[0]
	score, ok := first.Score(leaderQ)
	require.True(t, ok)
	assert.Equal(t, 4.0, score)
	band, ok := first.Text(AgeBandColumn)
	require.True(t, ok)
	assert.Equal(t, "30대", band)
	tenure, ok := first.Score(TenureColumn)
	require.True(t, ok)
	assert.Equal(t, 3.0, tenure)

	second := ds.Records[1]
	_, ok = second.Score(leaderQ)
	assert.False(t, ok, "blank rating is missing")
	_, ok = second.Text(AgeBandColumn)
	assert.False(t, ok, "no age, no band")
}

func TestBuildStrictAndLenientScores(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	tbl := testTable("남,34,3,4점", "여,41,8,잘 모르겠음")

	_, err = Build(tbl, reg, Options{})
	var malformed *model.MalformedError
	require.ErrorAs(t, err, &malformed)
	require.Len(t, malformed.Cells, 1)
	assert.Equal(t, model.CellError{Row: 2, Column: leaderQ, Value: "잘 모르겠음"}, malformed.Cells[0])
	assert.True(t, errors.Is(err, model.Code(model.ErrMalformed)))

	ds, err := Build(tbl, reg, Options{LenientScores: true})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	_, ok := ds.Records[1].Score(leaderQ)
	assert.False(t, ok)
}

func TestBuildRejectsNonFiniteAndOutOfRangeScores(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	tbl := testTable("남,34,3,4점", "여,41,8,NaN점", "남,29,1,9점", "여,52,20,0")

	_, err = Build(tbl, reg, Options{})
	var malformed *model.MalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, []model.CellError{
		{Row: 2, Column: leaderQ, Value: "NaN점"},
		{Row: 3, Column: leaderQ, Value: "9점"},
		{Row: 4, Column: leaderQ, Value: "0"},
	}, malformed.Cells)

	ds, err := Build(tbl, reg, Options{LenientScores: true})
	require.NoError(t, err)
	require.Equal(t, 4, ds.Len())
	var scores []float64
	for _, rec := range ds.Records {
		if v, ok := rec.Score(leaderQ); ok {
			scores = append(scores, v)
		}
	}
	assert.Equal(t, []float64{4}, scores, "rejected cells load as missing")
}

func TestBuildIgnoresNonFiniteNumbers(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)

	ds, err := Build(testTable("남,NaN,Inf,3점"), reg, Options{})
	require.NoError(t, err)
	_, ok := ds.Records[0].Score(AgeColumn)
	assert.False(t, ok)
	text, ok := ds.Records[0].Text(TenureColumn)
	require.True(t, ok)
	assert.Equal(t, "Inf", text)
}

func TestAgeBand(t *testing.T) {
	assert.Equal(t, "20대", AgeBand(29))
	assert.Equal(t, "30대", AgeBand(30))
	assert.Equal(t, "50대", AgeBand(57.9))
}

func TestLoadFingerprint(t *testing.T) {
	reg, err := DefaultRegistry()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "responses.csv")
	require.NoError(t, os.WriteFile(path, []byte("성별,연령\n남,34\n"), 0o644))

	ds, err := Load(path, reg, Options{})
	require.NoError(t, err)
	assert.Len(t, ds.Fingerprint, 64)

	again, err := Fingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, ds.Fingerprint, again)
}
