package report

import (
	"errors"
	"io"
	"slices"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"flowmon/internal/views"
)

// ErrNoData is returned when a chart has nothing to plot
var ErrNoData = errors.New("not enough data to plot")

const smaPeriod = 5

var gridStyle = chart.Style{
	StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
	StrokeWidth: 1.0,
}

var chartPadding = chart.Style{
	Padding: chart.Box{
		Top:    20,
		Left:   20,
		Right:  20,
		Bottom: 20,
	},
}

// RenderTrendChart writes the packet rate history of d as a PNG line chart
func RenderTrendChart(w io.Writer, d views.Dashboard) error {
	trend := d.Cycle.Trend
	if !trend.Valid() || trend.Len() < 2 || len(d.Trend.PacketRateK) != trend.Len() || len(d.Trend.FlowRate) != trend.Len() {
		return ErrNoData
	}
	peak := max(slices.Max(d.Trend.PacketRateK), slices.Max(d.Trend.FlowRate))
	if peak <= 0 {
		return ErrNoData
	}

	packets := chart.TimeSeries{
		Name: "Packets/s (K)",
		Style: chart.Style{
			StrokeColor: chart.GetDefaultColor(0),
			StrokeWidth: 2,
		},
		XValues: trend.Timestamps,
		YValues: d.Trend.PacketRateK,
	}

	graph := chart.Chart{
		Title: "Traffic Trend",
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: chartPadding,
		Width:      1200,
		Height:     400,
		XAxis: chart.XAxis{
			Name: "Time",
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			ValueFormatter: chart.TimeMinuteValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "Rate",
			NameStyle: chart.Style{
				FontSize: 12,
			},
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: peak * 1.1,
			},
			GridMajorStyle: gridStyle,
		},
		Series: []chart.Series{
			packets,
			chart.TimeSeries{
				Name: "Flows/s",
				Style: chart.Style{
					StrokeColor: chart.GetDefaultColor(2),
					StrokeWidth: 2,
				},
				XValues: trend.Timestamps,
				YValues: d.Trend.FlowRate,
			},
		},
	}

	// Add moving average
	if trend.Len() > smaPeriod {
		graph.Series = append(graph.Series, chart.SMASeries{
			Name: "Packets Moving Avg",
			Style: chart.Style{
				StrokeColor:     chart.GetDefaultColor(1),
				StrokeWidth:     2,
				StrokeDashArray: []float64{5, 5},
			},
			InnerSeries: packets,
			Period:      smaPeriod,
		})
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	return graph.Render(chart.PNG, w)
}

// RenderDistributionChart writes the attack distribution of d as a PNG bar chart
func RenderDistributionChart(w io.Writer, d views.Dashboard) error {
	var values []chart.Value
	var total, peak int64
	for i, s := range d.Distribution {
		total += s.Count
		peak = max(peak, s.Count)
		values = append(values, chart.Value{
			Label: s.Label,
			Value: float64(s.Count),
			Style: chart.Style{
				FillColor:   chart.GetDefaultColor(i),
				StrokeColor: chart.GetDefaultColor(i),
			},
		})
	}
	if total == 0 {
		return ErrNoData
	}

	graph := chart.BarChart{
		Title: "Attack Type Distribution",
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: chartPadding,
		Width:      1200,
		Height:     400,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(peak),
			},
			GridMajorStyle: gridStyle,
		},
		Bars:     values,
		BarWidth: 40,
	}

	return graph.Render(chart.PNG, w)
}
