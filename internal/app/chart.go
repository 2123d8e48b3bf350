package app

import "wahlnetz-service/internal/domain"

// BuildChart derives the radar rows for the visible topics in catalog order.
// Each row reads the answer and party scores at the topic's catalog position.
func BuildChart(ds domain.Dataset, answers []int, filters Filters) domain.Chart {
	rows := make([]domain.ChartRow, 0, len(ds.Questions))
	for pos, q := range ds.Questions {
		if !filters.TopicVisible(q.Topic) {
			continue
		}
		row := domain.ChartRow{Topic: q.Topic}
		if pos < len(answers) {
			row.User = answers[pos]
		}
		for _, p := range ds.Parties {
			if !filters.PartyVisible(p.Name) || pos >= len(p.Scores) {
				continue
			}
			row.Values = append(row.Values, domain.PartyValue{Party: p.Name, Score: p.Scores[pos]})
		}
		rows = append(rows, row)
	}
	return domain.Chart{Rows: rows, Series: VisibleSeries(ds, filters)}
}

// VisibleSeries lists the polygons to draw: the user first, then the visible parties.
func VisibleSeries(ds domain.Dataset, filters Filters) []domain.Series {
	series := []domain.Series{{Key: domain.UserSeriesKey, Name: domain.UserSeriesName, Color: domain.UserColor}}
	for _, p := range ds.Parties {
		if !filters.PartyVisible(p.Name) {
			continue
		}
		color := p.Color
		if color == "" {
			color = domain.FallbackColor
		}
		series = append(series, domain.Series{Key: p.Name, Name: p.Name, Color: color})
	}
	return series
}
