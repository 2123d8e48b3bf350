package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Phase is the step a survey session is in. Transitions only move forward.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"
	PhaseAnswering Phase = "answering"
	PhaseResult    Phase = "result"
)

// Answers are integers in [MinAnswer, MaxAnswer]; 0 marks an unset slot.
const (
	MinAnswer = 1
	MaxAnswer = 10
)

// Question is one topic of the catalog. ID equals its position.
type Question struct {
	ID     int    `json:"id" yaml:"id"`
	Topic  string `json:"topic" yaml:"topic"`
	Prompt string `json:"question" yaml:"question"`
}

// Party holds a party's score per catalog position.
type Party struct {
	Name   string    `json:"name" yaml:"name"`
	Color  string    `json:"color,omitempty" yaml:"color,omitempty"`
	Scores []float64 `json:"scores" yaml:"scores"`
}

// Dataset is a question catalog together with the party positions aligned to it.
type Dataset struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title,omitempty" yaml:"title,omitempty"`
	Questions []Question `json:"questions" yaml:"questions"`
	Parties   []Party    `json:"parties" yaml:"parties"`
}

// FilterEntry is one visibility switch, reported in dataset order.
type FilterEntry struct {
	Key     string `json:"key"`
	Visible bool   `json:"visible"`
}

// SessionState is a snapshot of a survey session safe to hand to clients.
type SessionState struct {
	SessionID     string        `json:"sessionId"`
	DatasetID     string        `json:"datasetId"`
	Phase         Phase         `json:"phase"`
	QuestionIndex int           `json:"questionIndex"`
	Total         int           `json:"total"`
	Question      *Question     `json:"question,omitempty"`
	Answers       []int         `json:"answers"`
	PartyFilter   []FilterEntry `json:"partyFilter"`
	TopicFilter   []FilterEntry `json:"topicFilter"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Series describes one polygon the chart renderer draws.
type Series struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PartyValue is a party's score on a chart row.
type PartyValue struct {
	Party string
	Score float64
}

// ChartRow is one radar axis: the topic, the user's answer and every visible party's score.
type ChartRow struct {
	Topic  string
	User   int
	Values []PartyValue
}

// MarshalJSON renders the row as the flat record radar renderers consume,
// e.g. {"topic":"A","user":5,"X":3,"Y":9}, keeping party order.
func (r ChartRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"topic":`)
	if err := writeJSONValue(&buf, r.Topic); err != nil {
		return nil, err
	}
	buf.WriteString(`,"user":`)
	if r.User == 0 {
		buf.WriteString("null")
	} else if err := writeJSONValue(&buf, r.User); err != nil {
		return nil, err
	}
	for _, v := range r.Values {
		buf.WriteByte(',')
		if err := writeJSONValue(&buf, v.Party); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONValue(&buf, v.Score); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONValue(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// Value returns the score of party on this row.
func (r ChartRow) Value(party string) (float64, bool) {
	for _, v := range r.Values {
		if v.Party == party {
			return v.Score, true
		}
	}
	return 0, false
}

// Chart is everything a radar renderer needs: rows plus the series to draw.
type Chart struct {
	Rows   []ChartRow `json:"rows"`
	Series []Series   `json:"series"`
}

// LeaderRow pairs a topic with the party or parties holding the top score.
type LeaderRow struct {
	Topic   string `json:"topic"`
	Leaders string `json:"leaders"`
}

// ResultView is what the result page shows.
type ResultView struct {
	SessionID string      `json:"sessionId"`
	Chart     Chart       `json:"chart"`
	Leaders   []LeaderRow `json:"leaders"`
}

// ImageFormat is an encoding supported by the chart exporter.
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
)

// ParseImageFormat accepts the usual spellings of the supported formats.
func ParseImageFormat(raw string) (ImageFormat, error) {
	switch raw {
	case "png", "PNG":
		return FormatPNG, nil
	case "jpeg", "jpg", "JPEG", "JPG":
		return FormatJPEG, nil
	}
	return "", ErrUnsupportedFormat
}

// ContentType returns the MIME type for the format.
func (f ImageFormat) ContentType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Ext returns the file extension, including the dot.
func (f ImageFormat) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// Image is an encoded chart snapshot.
type Image struct {
	Format ImageFormat
	Data   []byte
}

// SharePlatform is a social network the result can be shared to.
type SharePlatform string

const (
	PlatformTwitter  SharePlatform = "twitter"
	PlatformFacebook SharePlatform = "facebook"
	PlatformWhatsApp SharePlatform = "whatsapp"
)

// AllPlatforms lists the supported platforms in display order.
var AllPlatforms = []SharePlatform{PlatformTwitter, PlatformFacebook, PlatformWhatsApp}

// ShareLink holds the app deep link and the browser fallback for one platform.
type ShareLink struct {
	Platform  SharePlatform `json:"platform"`
	NativeURL string        `json:"nativeUrl"`
	WebURL    string        `json:"webUrl"`
}

// ShareResult is returned once the chart image is hosted.
type ShareResult struct {
	ImageURL string      `json:"imageUrl"`
	Links    []ShareLink `json:"links"`
}

// ParseSharePlatform validates a platform name.
func ParseSharePlatform(raw string) (SharePlatform, error) {
	for _, p := range AllPlatforms {
		if string(p) == raw {
			return p, nil
		}
	}
	return "", ErrUnsupportedPlatform
}
