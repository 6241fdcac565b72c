package folio

import (
	"bytes"
	"testing"

	"github.com/foliotrack/folio/date"
)

func TestRenderSeriesChart(t *testing.T) {
	points := []ValuePoint{
		{Date: date.MustParse("2024-03-04"), AbsoluteValue: 50, DisplayDate: "Mar 4"},
		{Date: date.MustParse("2024-03-05"), AbsoluteValue: -10, DisplayDate: "Mar 5"},
		{Date: date.MustParse("2024-03-06"), AbsoluteValue: 140, DisplayDate: "Mar 6"},
	}
	png, err := RenderSeriesChart(points, date.OneMonth)
	if err != nil {
		t.Fatalf("RenderSeriesChart() error = %v", err)
	}
	signature := []byte{0x89, 'P', 'N', 'G'}
	if len(png) < 4 || !bytes.Equal(png[:4], signature) {
		t.Errorf("output does not start with a PNG signature")
	}
}

func TestRenderSeriesChart_NeedsTwoPoints(t *testing.T) {
	single := []ValuePoint{{Date: date.MustParse("2024-03-04"), AbsoluteValue: 50}}
	if _, err := RenderSeriesChart(single, date.OneMonth); err == nil {
		t.Fatal("RenderSeriesChart() should fail with fewer than two points")
	}
	if _, err := RenderSeriesChart(nil, date.YearToDate); err == nil {
		t.Fatal("RenderSeriesChart() should fail with no points")
	}
}
