package acquisition

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sway.report/internal/fsutil"
)

func column(vals ...float64) [][]float64 {
	out := make([][]float64, len(vals))
	for i, v := range vals {
		out[i] = []float64{v}
	}
	return out
}

func writeExport(t *testing.T, fs *fsutil.MemoryFileSystem, path string, exp export) {
	t.Helper()
	data, err := json.Marshal(exp)
	require.NoError(t, err)
	require.NoError(t, fs.WriteFile(path, data, 0644))
}

func plateExport() export {
	return export{
		AnalogFrequency: 1000,
		PointFrequency:  100,
		Analogs: map[string][][]float64{
			"Fx1": column(0, 0, 0),
			"Fy1": column(0, 0, 0),
			"Fz1": column(500, 500, 500),
			"Mx1": column(1000, 1000, 1000),
			"My1": column(1000, 1000, 1000),
		},
	}
}

func boardExport() export {
	return export{
		AnalogFrequency: 1000,
		PointFrequency:  100,
		Analogs: map[string][][]float64{
			"year":       column(2019, 2019, 2019),
			"month":      column(3, 3, 3),
			"day":        column(14, 14, 15),
			"hour":       column(23, 23, 0),
			"minute":     column(59, 59, 0),
			"second":     column(59, 59, 0),
			"milisecond": column(980, 990, 5),
		},
		Points: map[string][][]float64{
			"TopRight Kg":    column(10, 10, 10),
			"BottomRight Kg": column(10, 10, 10),
			"TopLeft Kg":     column(10, 10, 10),
			"BottomLeft Kg":  column(10, 10, 10),
			"Accelerometer":  {{1, 2, 0}, {1, 2, 0}, {1, 2, 0}},
		},
	}
}

func TestJSONReader_ForcePlate(t *testing.T) {
	t.Parallel()

	fs := fsutil.NewMemoryFileSystem()
	writeExport(t, fs, "/data/FP/trial.json", plateExport())

	r := &JSONReader{FS: fs, Labels: DefaultLabels()}
	set, err := r.Read("/data/FP/trial.json", false)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, set.Frequency)
	assert.Nil(t, set.Timestamps)
	assert.Equal(t, 3, set.Len())
	fz, err := set.Column("Fz1", 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{500, 500, 500}, fz)
}

func TestJSONReader_BalanceBoard(t *testing.T) {
	t.Parallel()

	fs := fsutil.NewMemoryFileSystem()
	writeExport(t, fs, "/data/BB/trial.json", boardExport())

	r := &JSONReader{FS: fs, Labels: DefaultLabels()}
	set, err := r.Read("/data/BB/trial.json", true)
	require.NoError(t, err)

	assert.Equal(t, 100.0, set.Frequency)
	require.Len(t, set.Timestamps, 3)
	// The last sample rolls over to the next day.
	assert.InDeltaSlice(t, []float64{0, 0.01, 0.025}, set.Timestamps, 1e-9)

	acc, err := set.Column("Accelerometer", 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, acc)
}

func TestJSONReader_Errors(t *testing.T) {
	t.Parallel()

	fs := fsutil.NewMemoryFileSystem()
	r := &JSONReader{FS: fs, Labels: DefaultLabels()}

	missing := plateExport()
	delete(missing.Analogs, "Mx1")
	writeExport(t, fs, "/missing.json", missing)
	_, err := r.Read("/missing.json", false)
	assert.ErrorIs(t, err, ErrChannelNotFound)

	require.NoError(t, fs.WriteFile("/empty.json", nil, 0644))
	_, err = r.Read("/empty.json", false)
	assert.ErrorIs(t, err, ErrEmptyAcquisition)

	require.NoError(t, fs.WriteFile("/corrupt.json", []byte("{not json"), 0644))
	_, err = r.Read("/corrupt.json", false)
	assert.ErrorIs(t, err, ErrCorruptAcquisition)

	ragged := plateExport()
	ragged.Analogs["Fz1"] = column(500, 500)
	writeExport(t, fs, "/ragged.json", ragged)
	_, err = r.Read("/ragged.json", false)
	assert.ErrorIs(t, err, ErrCorruptAcquisition)

	noSamples := plateExport()
	for k := range noSamples.Analogs {
		noSamples.Analogs[k] = [][]float64{}
	}
	writeExport(t, fs, "/nosamples.json", noSamples)
	_, err = r.Read("/nosamples.json", false)
	assert.ErrorIs(t, err, ErrEmptyAcquisition)

	_, err = r.Read("/nope.json", false)
	assert.Error(t, err)

	noAcc := boardExport()
	delete(noAcc.Points, "Accelerometer")
	writeExport(t, fs, "/noacc.json", noAcc)
	_, err = r.Read("/noacc.json", true)
	assert.NoError(t, err)
	strict := &JSONReader{FS: fs, Labels: DefaultLabels(), RequireAccelerometer: true}
	_, err = strict.Read("/noacc.json", true)
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestTimestamps(t *testing.T) {
	t.Parallel()

	fields := [][]float64{
		{2020, 2020, 2020},
		{1, 1, 1},
		{1, 1, 1},
		{0, 0, 0},
		{0, 0, 1},
		{0, 1, 0},
		{500, 0, 0},
	}
	ts, err := Timestamps(fields)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.5, 59.5}, ts, 1e-9)

	_, err = Timestamps(fields[:6])
	assert.ErrorIs(t, err, ErrCorruptAcquisition)

	bad := [][]float64{{2020}, {13}, {1}, {0}, {0}, {0}, {0}}
	_, err = Timestamps(bad)
	assert.ErrorIs(t, err, ErrCorruptAcquisition)
}

func TestRawChannelSet_Accessors(t *testing.T) {
	t.Parallel()

	set := &RawChannelSet{
		Channels:  map[string][][]float64{"a": {{1, 2}, {3, 4}}},
		Frequency: 10,
	}
	require.NoError(t, set.Validate())

	_, err := set.Channel("b")
	assert.ErrorIs(t, err, ErrChannelNotFound)
	col, err := set.Column("a", 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, col)
	_, err = set.Column("a", 2)
	assert.ErrorIs(t, err, ErrCorruptAcquisition)

	set.Timestamps = []float64{0.1, 0}
	assert.ErrorIs(t, set.Validate(), ErrCorruptAcquisition)

	assert.ErrorIs(t, (&RawChannelSet{}).Validate(), ErrEmptyAcquisition)
}
