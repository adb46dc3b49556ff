package report

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fes-bids/internal/aggregate"
	"fes-bids/internal/config"
	"fes-bids/internal/data"
	"fes-bids/internal/model"
	"fes-bids/internal/output"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/gomail.v2"
)

// Friday.
var day = model.NewTradingDay(2025, time.February, 7)

func snapshot(d model.TradingDay, lag model.Lag, mw float64) *model.Snapshot {
	s := &model.Snapshot{Day: d, Lag: lag}
	for _, p := range d.Periods() {
		r := model.NewForecastRow(p.Start)
		r.Values[model.SourceROI] = mw
		r.Values[model.SourceS1] = 3
		s.Rows = append(s.Rows, r)
	}
	return s
}

func TestEnergyMWhSkipsSolarSlots(t *testing.T) {
	t.Parallel()

	// 48 periods of 10 MW is 240 MWh; S1 is left out.
	assert.Equal(t, 240.0, EnergyMWh(snapshot(day, model.LagD1, 10)))
}

func TestSubjectAndBody(t *testing.T) {
	t.Parallel()

	b := &Briefing{Day: day, D1: snapshot(day, model.LagD1, 10)}
	assert.Equal(t, "ISEM D-1 Generation Volumes Friday 07/02/2025", Subject(b))
	assert.Contains(t, Body(b), "Updated Forecast D-1: 240.0 MWh")
	assert.NotContains(t, Body(b), "D-2")

	b.D2 = snapshot(day, model.DayAheadLag(2), 12.5)
	assert.Contains(t, Body(b), "Previous Forecast D-2: 300.0 MWh")
	assert.Contains(t, Body(b), "Diff: -60.0 MWh")
}

func writeSnap(t *testing.T, l output.Layout, s *model.Snapshot) {
	t.Helper()
	require.NoError(t, data.WriteSnapshot(l.GenerationSnapshot(s.Day, s.Lag), s))
}

func TestLoadBriefingFridayMode(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	l := output.NewLayout(config.PathsConfig{Generation: root, Output: root})

	_, err := LoadBriefing(context.Background(), l, day, false)
	assert.ErrorIs(t, err, model.ErrNotFound)

	writeSnap(t, l, snapshot(day, model.LagD1, 10))
	writeSnap(t, l, snapshot(day.AddDays(1), model.DayAheadLag(3), 5))
	writeSnap(t, l, snapshot(day.AddDays(3), model.DayAheadLag(5), 7))

	b, err := LoadBriefing(context.Background(), l, day, false)
	require.NoError(t, err)
	assert.True(t, b.Friday)
	assert.Nil(t, b.D2)
	require.Len(t, b.Weekend, 2)
	assert.Equal(t, model.DayAheadLag(3), b.Weekend[0].Lag)
	assert.Equal(t, model.DayAheadLag(5), b.Weekend[1].Lag)
}

func TestWriteBriefing(t *testing.T) {
	t.Parallel()

	q := make([]float64, model.PeriodsPerDay)
	for i := range q {
		q[i] = -10
	}
	b := &Briefing{
		Day:     day,
		D1:      snapshot(day, model.LagD1, 10),
		D2:      snapshot(day, model.DayAheadLag(2), 12),
		Weekend: []*model.Snapshot{snapshot(day.AddDays(1), model.DayAheadLag(3), 4)},
		Friday:  true,
		Tables: []*aggregate.Table{{
			Unit:    model.GenerationUnit,
			Day:     day,
			Lag:     model.LagD1,
			Periods: day.Periods(),
			Columns: []aggregate.Column{{Name: model.GenerationUnit.ID, Values: q}},
		}},
	}

	path := filepath.Join(t.TempDir(), "briefing.xlsx")
	require.NoError(t, WriteBriefing(path, b))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetSummary, SheetD1, SheetComparison, SheetWeekend, "GU_504260"}, f.GetSheetList())

	v, err := f.GetCellValue(SheetSummary, "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "240", v)

	v, err = f.GetCellValue(SheetComparison, "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "-2", v)
}

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestMailerSend(t *testing.T) {
	t.Parallel()

	attachment := filepath.Join(t.TempDir(), "Generation Forecast 07.02.2025 D-1.xlsx")
	require.NoError(t, data.WriteSnapshot(attachment, snapshot(day, model.LagD1, 10)))

	fs := &fakeSender{}
	m := &Mailer{From: "desk@example.com", To: []string{"trading@example.com"}, Cc: []string{"fc@example.com"}, Sender: fs}
	b := &Briefing{Day: day, D1: snapshot(day, model.LagD1, 10)}

	require.NoError(t, m.Send(context.Background(), b, attachment, filepath.Join(t.TempDir(), "missing.xlsx")))
	require.Len(t, fs.sent, 1)
	msg := fs.sent[0]
	assert.Equal(t, []string{Subject(b)}, msg.GetHeader("Subject"))
	assert.Equal(t, []string{"fc@example.com"}, msg.GetHeader("Cc"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `D-1.xlsx"`)
	assert.NotContains(t, buf.String(), "missing.xlsx")

	fs.err = errors.New("smtp down")
	assert.Error(t, m.Send(context.Background(), b))
}

func TestNewMailerDisabledWithoutHost(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewMailer(config.EmailConfig{To: []string{"x@example.com"}}, config.Secrets{}))
	assert.NotNil(t, NewMailer(config.EmailConfig{Host: "smtp.example.com", Port: 587, To: []string{"x@example.com"}}, config.Secrets{}))
}
