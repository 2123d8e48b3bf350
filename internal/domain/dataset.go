package domain

import (
	"fmt"
	"math"
	"strings"
)

// The user's own series: row field, legend label and color.
const (
	UserSeriesKey  = "user"
	UserSeriesName = "Du"
	UserColor      = "#8884d8"
)

// FallbackColor is used for parties without an explicit or default color.
const FallbackColor = "#00C49F"

// DefaultPartyColors maps well-known party names to their chart color.
var DefaultPartyColors = map[string]string{
	"Union": "#000000",
	"AfD":   "#0489DB",
	"SPD":   "#E3000F",
	"Grüne": "#1AA037",
	"Linke": "#BE3075",
	"FDP":   "#FFEF00",
	"BSW":   "#792351",
}

// Prepare assigns question IDs by position, resolves party colors and validates
// the result. Loaders call it once; the returned dataset is treated as immutable.
func (d Dataset) Prepare() (Dataset, error) {
	out := Dataset{
		ID:        d.ID,
		Title:     d.Title,
		Questions: make([]Question, len(d.Questions)),
		Parties:   make([]Party, len(d.Parties)),
	}
	for i, q := range d.Questions {
		q.ID = i
		out.Questions[i] = q
	}
	for i, p := range d.Parties {
		p.Scores = append([]float64(nil), p.Scores...)
		p.Color = resolveColor(p)
		out.Parties[i] = p
	}
	if err := out.Validate(); err != nil {
		return Dataset{}, err
	}
	return out, nil
}

func resolveColor(p Party) string {
	if p.Color != "" {
		return p.Color
	}
	if c, ok := DefaultPartyColors[p.Name]; ok {
		return c
	}
	return FallbackColor
}

// Validate checks the invariants every consumer of a dataset relies on.
func (d Dataset) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidDataset)
	}
	if len(d.Questions) == 0 {
		return fmt.Errorf("%w: %s has no questions", ErrInvalidDataset, d.ID)
	}
	topics := make(map[string]struct{}, len(d.Questions))
	for i, q := range d.Questions {
		if q.ID != i {
			return fmt.Errorf("%w: question %q has id %d at position %d", ErrInvalidDataset, q.Topic, q.ID, i)
		}
		if strings.TrimSpace(q.Topic) == "" {
			return fmt.Errorf("%w: question %d has no topic", ErrInvalidDataset, i)
		}
		if _, dup := topics[q.Topic]; dup {
			return fmt.Errorf("%w: duplicate topic %q", ErrInvalidDataset, q.Topic)
		}
		topics[q.Topic] = struct{}{}
	}
	if len(d.Parties) == 0 {
		return fmt.Errorf("%w: %s has no parties", ErrInvalidDataset, d.ID)
	}
	names := make(map[string]struct{}, len(d.Parties))
	for _, p := range d.Parties {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: party without name", ErrInvalidDataset)
		}
		if p.Name == UserSeriesKey || p.Name == "topic" {
			return fmt.Errorf("%w: party name %q is reserved", ErrInvalidDataset, p.Name)
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("%w: duplicate party %q", ErrInvalidDataset, p.Name)
		}
		names[p.Name] = struct{}{}
		if len(p.Scores) != len(d.Questions) {
			return fmt.Errorf("%w: party %q has %d scores, catalog has %d questions",
				ErrInvalidDataset, p.Name, len(p.Scores), len(d.Questions))
		}
		for i, s := range p.Scores {
			if math.IsNaN(s) || s < MinAnswer || s > MaxAnswer {
				return fmt.Errorf("%w: party %q score %v for %q outside [%d, %d]",
					ErrInvalidDataset, p.Name, s, d.Questions[i].Topic, MinAnswer, MaxAnswer)
			}
		}
	}
	return nil
}

// PartyNames returns party names in dataset order.
func (d Dataset) PartyNames() []string {
	names := make([]string, len(d.Parties))
	for i, p := range d.Parties {
		names[i] = p.Name
	}
	return names
}

// Topics returns topic labels in catalog order.
func (d Dataset) Topics() []string {
	topics := make([]string, len(d.Questions))
	for i, q := range d.Questions {
		topics[i] = q.Topic
	}
	return topics
}

// Party looks up a party by name.
func (d Dataset) Party(name string) (Party, bool) {
	for _, p := range d.Parties {
		if p.Name == name {
			return p, true
		}
	}
	return Party{}, false
}
