package app

import "wahlnetz-service/internal/domain"

// Filters holds the party and topic visibility switches of a result page.
// Keys are fixed when the filters are created; toggles never add or remove keys.
type Filters struct {
	parties map[string]bool
	topics  map[string]bool
}

// NewFilters returns filters with every party and topic of ds visible.
func NewFilters(ds domain.Dataset) Filters {
	f := Filters{
		parties: make(map[string]bool, len(ds.Parties)),
		topics:  make(map[string]bool, len(ds.Questions)),
	}
	for _, p := range ds.Parties {
		f.parties[p.Name] = true
	}
	for _, q := range ds.Questions {
		f.topics[q.Topic] = true
	}
	return f
}

// FiltersFrom builds filters from explicit maps. The maps are copied.
func FiltersFrom(parties, topics map[string]bool) Filters {
	f := Filters{
		parties: make(map[string]bool, len(parties)),
		topics:  make(map[string]bool, len(topics)),
	}
	for k, v := range parties {
		f.parties[k] = v
	}
	for k, v := range topics {
		f.topics[k] = v
	}
	return f
}

// PartyVisible reports whether the party series is shown. Keys the filter
// does not know are treated as visible.
func (f Filters) PartyVisible(name string) bool {
	v, ok := f.parties[name]
	return !ok || v
}

// TopicVisible reports whether the topic axis is shown.
func (f Filters) TopicVisible(topic string) bool {
	v, ok := f.topics[topic]
	return !ok || v
}

// ToggleParty flips one party switch. Unknown names are ignored and reported as false.
func (f *Filters) ToggleParty(name string) bool {
	return toggle(f.parties, name)
}

// ToggleTopic flips one topic switch. Unknown topics are ignored and reported as false.
func (f *Filters) ToggleTopic(topic string) bool {
	return toggle(f.topics, topic)
}

func toggle(m map[string]bool, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	m[key] = !v
	return true
}

// Clone returns an independent copy.
func (f Filters) Clone() Filters {
	return FiltersFrom(f.parties, f.topics)
}

// Entries lists the switches in dataset order.
func (f Filters) Entries(ds domain.Dataset) (parties, topics []domain.FilterEntry) {
	parties = make([]domain.FilterEntry, 0, len(ds.Parties))
	for _, p := range ds.Parties {
		parties = append(parties, domain.FilterEntry{Key: p.Name, Visible: f.PartyVisible(p.Name)})
	}
	topics = make([]domain.FilterEntry, 0, len(ds.Questions))
	for _, q := range ds.Questions {
		topics = append(topics, domain.FilterEntry{Key: q.Topic, Visible: f.TopicVisible(q.Topic)})
	}
	return parties, topics
}
