package app

import (
	"reflect"
	"testing"

	"wahlnetz-service/internal/domain"
)

func TestFiltersDefaultVisible(t *testing.T) {
	ds := sampleDataset()
	parties, topics := NewFilters(ds).Entries(ds)
	want := []domain.FilterEntry{{Key: "X", Visible: true}, {Key: "Y", Visible: true}}
	if !reflect.DeepEqual(parties, want) {
		t.Fatalf("expected %+v, got %+v", want, parties)
	}
	if len(topics) != 2 || !topics[0].Visible || !topics[1].Visible {
		t.Fatalf("expected all topics visible, got %+v", topics)
	}
}

func TestFiltersDoubleToggleRestores(t *testing.T) {
	ds := sampleDataset()
	filters := NewFilters(ds)
	filters.ToggleTopic("A")
	before := filters.Clone()

	for _, key := range []string{"X", "Y"} {
		if !filters.ToggleParty(key) || !filters.ToggleParty(key) {
			t.Fatalf("expected toggles of %s to apply", key)
		}
	}
	if !filters.ToggleTopic("B") || !filters.ToggleTopic("B") {
		t.Fatalf("expected topic toggles to apply")
	}

	bp, bt := before.Entries(ds)
	ap, at := filters.Entries(ds)
	if !reflect.DeepEqual(bp, ap) || !reflect.DeepEqual(bt, at) {
		t.Fatalf("double toggle changed filters: before %v %v, after %v %v", bp, bt, ap, at)
	}
}

func TestFiltersToggleTouchesOnlyOneKey(t *testing.T) {
	ds := sampleDataset()
	filters := NewFilters(ds)
	filters.ToggleParty("X")
	if filters.PartyVisible("X") || !filters.PartyVisible("Y") {
		t.Fatalf("expected only X hidden")
	}
	if !filters.TopicVisible("A") || !filters.TopicVisible("B") {
		t.Fatalf("party toggle changed topics")
	}
}

func TestFiltersIgnoreUnknownKeys(t *testing.T) {
	ds := sampleDataset()
	filters := NewFilters(ds)
	if filters.ToggleParty("Gone") || filters.ToggleTopic("Gone") {
		t.Fatalf("expected unknown keys to be ignored")
	}
	parties, topics := filters.Entries(ds)
	if len(parties) != 2 || len(topics) != 2 {
		t.Fatalf("toggle of unknown key added entries: %v %v", parties, topics)
	}
}

func TestFiltersCloneIsIndependent(t *testing.T) {
	ds := sampleDataset()
	filters := NewFilters(ds)
	clone := filters.Clone()
	clone.ToggleParty("X")
	if !filters.PartyVisible("X") {
		t.Fatalf("clone shares state with original")
	}
}
