package analysis

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietOptions() Options {
	opt := DefaultOptions()
	opt.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return opt
}

func TestRunCardiologiaScenario(t *testing.T) {
	var tbl Table
	for i := 0; i < 3; i++ {
		tbl = append(tbl, visitRow("Cardiologia ", "amil saude", "01/02/2024"))
	}
	for i := 0; i < 2; i++ {
		tbl = append(tbl, visitRow("Cardiologia", "Bradesco", "01/02/2024"))
	}

	res, err := Run(context.Background(), tbl, quietOptions())
	require.NoError(t, err)

	feb1 := Date{2024, time.February, 1}
	require.Equal(t, []PivotRow{
		{Specialty: "CARDIOLOGIA", Category: Group},
		{Specialty: "CARDIOLOGIA", Category: NonGroup},
	}, res.Pivot.Rows)
	require.Equal(t, []Date{feb1}, res.Pivot.Dates)
	assert.Equal(t, [][]int{{3}, {2}}, res.Pivot.Cells)

	require.NotNil(t, res.Volume)
	assert.Equal(t, DailyVolume{Date: feb1, Total: 5}, res.Volume.Max)
	assert.Equal(t, DailyVolume{Date: feb1, Total: 5}, res.Volume.Min)

	assert.Equal(t, 5, res.Rows)
	assert.Equal(t, 5, res.Stats.Kept)
	assert.Equal(t, res.Stats.Kept, TotalCount(res.Counts))
	assert.Equal(t, res.Stats.Kept, res.Pivot.Total())
	assert.NotEmpty(t, res.RunID)
}

func TestRunEmptyTable(t *testing.T) {
	res, err := Run(context.Background(), Table{}, quietOptions())
	require.NoError(t, err)
	assert.True(t, res.Pivot.Empty())
	assert.Empty(t, res.Pivot.Dates)
	assert.Nil(t, res.Volume)
}

func TestRunAllRowsDropped(t *testing.T) {
	tbl := Table{visitRow("Cardiologia", "   ", "01/02/2024"), visitRow("", "Amil", "01/02/2024")}

	res, err := Run(context.Background(), tbl, quietOptions())
	require.NoError(t, err)
	assert.True(t, res.Pivot.Empty())
	assert.Nil(t, res.Volume)
	assert.Equal(t, 2, res.Stats.Dropped())
}

func TestRunStructuralError(t *testing.T) {
	res, err := Run(context.Background(), Table{{"only", "three", "cells"}}, quietOptions())
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrStructural))
}

func TestRunMaxRows(t *testing.T) {
	tbl := Table{
		visitRow("Cardiologia", "Amil", "01/02/2024"),
		visitRow("Cardiologia", "Amil", "02/02/2024"),
		visitRow("Cardiologia", "Amil", "03/02/2024"),
	}
	opt := quietOptions()
	opt.MaxRows = 2

	res, err := Run(context.Background(), tbl, opt)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Processed)
	assert.Len(t, res.Pivot.Dates, 2)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, Table{visitRow("Cardiologia", "Amil", "01/02/2024")}, quietOptions())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunDoesNotMutateInput(t *testing.T) {
	tbl := Table{visitRow("Cardiologia ", "amil", "01/02/2024")}
	before := append([]any(nil), tbl[0]...)

	_, err := Run(context.Background(), tbl, quietOptions())
	require.NoError(t, err)
	assert.Equal(t, before, tbl[0])
}

func TestRunLogsRunID(t *testing.T) {
	var buf bytes.Buffer
	opt := DefaultOptions()
	opt.Logger = slog.New(slog.NewJSONHandler(&buf, nil))

	res, err := Run(context.Background(), Table{visitRow("Cardiologia", "Amil", "01/02/2024")}, opt)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), res.RunID)
	assert.Contains(t, buf.String(), "pipeline finished")
}

func TestRunConcurrentMatchesSequential(t *testing.T) {
	tables := []Table{
		{
			visitRow("Cardiologia São João", "Amil Saúde", "01/02/2024"),
			visitRow("Cardiologia São João", "Bradesco Saúde", "01/02/2024"),
			visitRow("Pediatria", "amil", "02/02/2024"),
		},
		{
			visitRow("Ortopedia - Criança", "SulAmérica", "03/02/2024"),
			visitRow("Ortopedia - Criança", "Amil One", "03/02/2024"),
			visitRow("Dermatologia", "Unimed", "04/02/2024"),
		},
	}
	want := make([]*Result, len(tables))
	for i, tbl := range tables {
		res, err := Run(context.Background(), tbl, quietOptions())
		require.NoError(t, err)
		want[i] = res
	}

	const workers = 8
	got := make([]*Result, workers*len(tables)*25)
	errs := make([]error, len(got))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for k := range got {
		wg.Add(1)
		sem <- struct{}{}
		go func(k int) {
			defer wg.Done()
			defer func() { <-sem }()
			got[k], errs[k] = Run(context.Background(), tables[k%len(tables)], quietOptions())
		}(k)
	}
	wg.Wait()

	for k, res := range got {
		require.NoError(t, errs[k])
		w := want[k%len(tables)]
		assert.Equal(t, w.Stats, res.Stats, "run %d", k)
		assert.Equal(t, w.Pivot, res.Pivot, "run %d", k)
		assert.Equal(t, w.Volume, res.Volume, "run %d", k)
	}
}
