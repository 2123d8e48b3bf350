package app

import (
	"encoding/json"
	"testing"

	"wahlnetz-service/internal/domain"
)

func TestBuildChartAllVisible(t *testing.T) {
	ds := sampleDataset()
	chart := BuildChart(ds, []int{5, 5}, NewFilters(ds))

	data, err := json.Marshal(chart.Rows)
	if err != nil {
		t.Fatalf("marshal rows: %v", err)
	}
	want := `[{"topic":"A","user":5,"X":3,"Y":9},{"topic":"B","user":5,"X":7,"Y":7}]`
	if string(data) != want {
		t.Fatalf("expected %s, got %s", want, data)
	}

	if len(chart.Series) != 3 || chart.Series[0].Key != domain.UserSeriesKey || chart.Series[1].Key != "X" || chart.Series[2].Key != "Y" {
		t.Fatalf("unexpected series %+v", chart.Series)
	}
	if chart.Series[2].Color != "#E3000F" {
		t.Fatalf("expected dataset color for Y, got %s", chart.Series[2].Color)
	}
}

func TestBuildChartTopicFilterUsesCatalogPosition(t *testing.T) {
	ds := sampleDataset()
	filters := FiltersFrom(map[string]bool{"X": true, "Y": true}, map[string]bool{"A": false, "B": true})

	chart := BuildChart(ds, []int{2, 8}, filters)
	if len(chart.Rows) != 1 {
		t.Fatalf("expected only the B row, got %+v", chart.Rows)
	}
	row := chart.Rows[0]
	if row.Topic != "B" || row.User != 8 {
		t.Fatalf("expected B row with the second answer, got %+v", row)
	}
	if x, _ := row.Value("X"); x != 7 {
		t.Fatalf("expected X score at position 1, got %v", x)
	}

	// Leader computation is not affected by the topic filter.
	if got := LeadingParty(ds, 0); got != "Y" {
		t.Fatalf("expected Y to lead topic A, got %q", got)
	}
}

func TestBuildChartHidesParties(t *testing.T) {
	ds := sampleDataset()
	filters := NewFilters(ds)
	filters.ToggleParty("Y")

	chart := BuildChart(ds, []int{1, 2}, filters)
	for _, row := range chart.Rows {
		if _, ok := row.Value("Y"); ok {
			t.Fatalf("hidden party Y present in %+v", row)
		}
		if _, ok := row.Value("X"); !ok {
			t.Fatalf("visible party X missing in %+v", row)
		}
	}
	for _, s := range chart.Series {
		if s.Key == "Y" {
			t.Fatalf("hidden party Y in series %+v", chart.Series)
		}
	}
}

func TestBuildChartRowCountMatchesVisibleTopics(t *testing.T) {
	ds := sampleDataset()
	cases := []struct {
		topics map[string]bool
		want   int
	}{
		{map[string]bool{"A": true, "B": true}, 2},
		{map[string]bool{"B": true, "A": true}, 2},
		{map[string]bool{"A": true, "B": false}, 1},
		{map[string]bool{"A": false, "B": false}, 0},
	}
	for _, tc := range cases {
		chart := BuildChart(ds, []int{1, 1}, FiltersFrom(nil, tc.topics))
		if len(chart.Rows) != tc.want {
			t.Fatalf("topics %v: expected %d rows, got %d", tc.topics, tc.want, len(chart.Rows))
		}
		if tc.want == 2 && (chart.Rows[0].Topic != "A" || chart.Rows[1].Topic != "B") {
			t.Fatalf("expected catalog order, got %+v", chart.Rows)
		}
	}
}

func TestBuildChartIsPure(t *testing.T) {
	ds := sampleDataset()
	answers := []int{5, 6}
	filters := NewFilters(ds)

	first := BuildChart(ds, answers, filters)
	second := BuildChart(ds, answers, filters)
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("repeated calls differ: %s vs %s", a, b)
	}
	if answers[0] != 5 || !filters.PartyVisible("X") {
		t.Fatalf("inputs were mutated")
	}
}
