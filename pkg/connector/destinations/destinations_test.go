package destinations

import (
	stdcsv "encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercepipe/commercepipe/pkg/compression"
	"github.com/commercepipe/commercepipe/pkg/etlerrors"
	"github.com/commercepipe/commercepipe/pkg/table"
	"github.com/commercepipe/commercepipe/pkg/testutil"
)

func sampleTable(t *testing.T) *table.Table {
	return testutil.BuildTable(t, "top_spenders",
		testutil.Col{Name: "customer_id", Type: table.ColumnTypeInt,
			Values: []interface{}{int64(10), int64(20)}},
		testutil.Col{Name: "total_spent", Type: table.ColumnTypeFloat,
			Values: []interface{}{200.0, nil}},
		testutil.Col{Name: "last_order_date", Type: table.ColumnTypeTimestamp,
			Values: []interface{}{
				time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), nil,
			}},
		testutil.Col{Name: "order_month", Type: table.ColumnTypePeriod,
			Values: []interface{}{table.Period("2024-03"), nil}},
	)
}

func TestForFormat(t *testing.T) {
	logger := testutil.TestLogger(t)
	for _, format := range []string{"csv", "JSON", "arrow"} {
		loader, err := ForFormat(format, compression.None, logger)
		require.NoError(t, err, format)
		assert.NotNil(t, loader)
	}

	_, err := ForFormat("parquet", compression.None, logger)
	require.Error(t, err)
	assert.True(t, etlerrors.IsType(err, etlerrors.ErrorTypeConfig))
}

func TestForFormats(t *testing.T) {
	loaders, err := ForFormats([]string{"csv", "json"}, compression.None, testutil.TestLogger(t))
	require.NoError(t, err)
	require.Len(t, loaders, 2)
	assert.Equal(t, "csv", loaders[0].Format())
	assert.Equal(t, "json", loaders[1].Format())

	_, err = ForFormats([]string{"csv", "bogus"}, compression.None, testutil.TestLogger(t))
	assert.Error(t, err)
}

func TestCSVLoaderSave(t *testing.T) {
	dir := t.TempDir()
	loader, err := ForFormat("csv", compression.None, testutil.TestLogger(t))
	require.NoError(t, err)
	require.NoError(t, loader.Save(sampleTable(t), dir))

	f, err := os.Open(filepath.Join(dir, "top_spenders.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := stdcsv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"customer_id", "total_spent", "last_order_date", "order_month"}, records[0])
	assert.Equal(t, "10", records[1][0])
	assert.Equal(t, "2024-03", records[1][3])
	assert.Equal(t, "", records[2][1], "nulls serialize as empty cells")
}

func TestCSVLoaderCompressed(t *testing.T) {
	dir := t.TempDir()
	loader, err := ForFormat("csv", compression.Gzip, testutil.TestLogger(t))
	require.NoError(t, err)
	require.NoError(t, loader.Save(sampleTable(t), dir))

	path := filepath.Join(dir, "top_spenders.csv.gz")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rc, err := compression.Gzip.NewReader(f)
	require.NoError(t, err)
	defer rc.Close()

	records, err := stdcsv.NewReader(rc).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestJSONLoaderSave(t *testing.T) {
	dir := t.TempDir()
	loader, err := ForFormat("json", compression.None, testutil.TestLogger(t))
	require.NoError(t, err)
	require.NoError(t, loader.Save(sampleTable(t), dir))

	data, err := os.ReadFile(filepath.Join(dir, "top_spenders.json"))
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, float64(10), rows[0]["customer_id"])
	assert.Equal(t, "2024-03-01 12:30:00", rows[0]["last_order_date"])
	assert.Equal(t, "2024-03", rows[0]["order_month"])
	assert.Nil(t, rows[1]["total_spent"], "nulls serialize as JSON null")
}

func TestArrowLoaderSave(t *testing.T) {
	dir := t.TempDir()
	loader, err := ForFormat("arrow", compression.None, testutil.TestLogger(t))
	require.NoError(t, err)
	require.NoError(t, loader.Save(sampleTable(t), dir))

	info, err := os.Stat(filepath.Join(dir, "top_spenders.arrow"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
