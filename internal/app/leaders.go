package app

import (
	"math"
	"strings"

	"wahlnetz-service/internal/domain"
)

// Leaders returns the parties holding the maximum score at the catalog position,
// first seen first. It always scans the whole dataset; filters do not apply.
func Leaders(ds domain.Dataset, position int) []string {
	if position < 0 || position >= len(ds.Questions) {
		return nil
	}
	maxVal := math.Inf(-1)
	var leaders []string
	for _, p := range ds.Parties {
		if position >= len(p.Scores) {
			continue
		}
		val := p.Scores[position]
		switch {
		case val > maxVal:
			maxVal = val
			leaders = []string{p.Name}
		case val == maxVal:
			leaders = append(leaders, p.Name)
		}
	}
	return leaders
}

// LeadingParty joins Leaders with ", ".
func LeadingParty(ds domain.Dataset, position int) string {
	return strings.Join(Leaders(ds, position), ", ")
}

// LeaderTable lists the leading parties for every visible topic.
func LeaderTable(ds domain.Dataset, filters Filters) []domain.LeaderRow {
	rows := make([]domain.LeaderRow, 0, len(ds.Questions))
	for pos, q := range ds.Questions {
		if !filters.TopicVisible(q.Topic) {
			continue
		}
		rows = append(rows, domain.LeaderRow{Topic: q.Topic, Leaders: LeadingParty(ds, pos)})
	}
	return rows
}
