package export

import (
	"os"
	"path/filepath"
	"testing"

	"vivapickup/services/pickup"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

func sampleRows() []pickup.Row {
	var header, item pickup.Row
	header[1] = "A"
	header[2] = "N1"
	header[7] = "Jane Doe"
	header[8] = "555/666"
	item[4] = "P1"
	item[5] = "V1"
	item[6] = "3"
	item[12] = "现货"
	return []pickup.Row{header, item, {}}
}

func TestForFormat(t *testing.T) {
	sink, ext, err := ForFormat("xlsx")
	require.NoError(t, err)
	require.IsType(t, XLSX{}, sink)
	require.Equal(t, ".xlsx", ext)

	sink, ext, err = ForFormat("csv")
	require.NoError(t, err)
	require.IsType(t, CSV{}, sink)
	require.Equal(t, ".csv", ext)

	_, _, err = ForFormat("pdf")
	require.Error(t, err)
}

func TestXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, XLSX{}.Write(path, sampleRows()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SheetName}, f.GetSheetList())

	cols, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(cols), 3)
	require.Equal(t, Headers[:], cols[0][:pickup.ColumnCount])
	require.Equal(t, "N1", cols[1][2])
	require.Equal(t, "现货", cols[2][12])

	// the quantity cell is stored as a number, not a string
	cellType, err := f.GetCellType(SheetName, "G3")
	require.NoError(t, err)
	require.NotEqual(t, excelize.CellTypeSharedString, cellType)
	qty, err := f.GetCellValue(SheetName, "G3")
	require.NoError(t, err)
	require.Equal(t, "3", qty)
}

func TestXLSXNonNumericQuantityStaysVerbatim(t *testing.T) {
	var row pickup.Row
	row[6] = "两个"
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, XLSX{}.Write(path, []pickup.Row{row}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	qty, err := f.GetCellValue(SheetName, "G2")
	require.NoError(t, err)
	require.Equal(t, "两个", qty)
}

func TestCSVWritesGBK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, CSV{}.Write(path, sampleRows()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	// the bytes on disk are not utf-8
	require.NotContains(t, string(raw), "销售")

	decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), raw)
	require.NoError(t, err)
	text := string(decoded)
	require.Contains(t, text, "销售")
	require.Contains(t, text, "N1")
	require.Contains(t, text, "现货")
}
