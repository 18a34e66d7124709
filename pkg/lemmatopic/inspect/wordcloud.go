package inspect

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cognicore/lemmatopic/pkg/lemmatopic/topic"
)

func cloud(title string, terms []TermWeight) *charts.WordCloud {
	data := make([]opts.WordCloudData, 0, len(terms))
	for _, t := range terms {
		data = append(data, opts.WordCloudData{Name: t.Term, Value: t.Weight})
	}

	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "600px",
			Height:    "400px",
		}),
	)
	wc.AddSeries("terms", data,
		charts.WithWorldCloudChartOpts(opts.WordCloudChart{
			Shape:         "circle",
			SizeRange:     []float32{14, 80},
			RotationRange: []float32{0, 0},
		}),
	)
	return wc
}

// WordCloud renders a standalone HTML word cloud of terms.
func WordCloud(w io.Writer, title string, terms []TermWeight) error {
	if err := cloud(title, terms).Render(w); err != nil {
		return fmt.Errorf("render word cloud: %w", err)
	}
	return nil
}

// WordClouds renders one cloud per topic, each with its n top terms, on a
// single HTML page.
func WordClouds(w io.Writer, m *topic.Model, n int) error {
	page := components.NewPage()
	page.SetPageTitle("topics")
	for k := 0; k < m.K; k++ {
		terms, err := TopTerms(m, k, n)
		if err != nil {
			return err
		}
		page.AddCharts(cloud(fmt.Sprintf("Topic %d", k), terms))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render word clouds: %w", err)
	}
	return nil
}
