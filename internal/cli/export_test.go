package cli

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wahlnetz-service/internal/config"
	"wahlnetz-service/internal/domain"
	"wahlnetz-service/internal/infra/memory"
)

const fourteenAnswers = "5,7,3,10,1,8,6,4,9,2,5,5,7,3"

func TestRunExportWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chart.png")
	var stdout bytes.Buffer
	cfg := config.Config{}
	cfg.Share.Width, cfg.Share.Height = 300, 300

	err := runExport(context.Background(), cfg, exportOptions{answers: fourteenAnswers, format: "png", out: out}, &stdout)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if !strings.Contains(stdout.String(), "wrote "+out) {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestRunExportShares(t *testing.T) {
	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("image")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		if _, err := jpeg.Decode(file); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"success":true,"data":{"url":"https://i.example/w.jpg"}}`))
	}))
	defer host.Close()

	cfg := config.Config{}
	cfg.Share.UploadURL = host.URL
	cfg.Share.Width, cfg.Share.Height = 200, 200
	var stdout bytes.Buffer
	opts := exportOptions{answers: fourteenAnswers, format: "png", out: filepath.Join(t.TempDir(), "c.png"), share: true}
	if err := runExport(context.Background(), cfg, opts, &stdout); err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, want := range []string{"https://i.example/w.jpg", "twitter", "facebook", "whatsapp"} {
		if !strings.Contains(stdout.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout.String())
		}
	}
}

func TestRunExportShareWithoutHost(t *testing.T) {
	opts := exportOptions{answers: fourteenAnswers, format: "jpeg", out: filepath.Join(t.TempDir(), "c.jpg"), share: true}
	err := runExport(context.Background(), config.Config{}, opts, &bytes.Buffer{})
	if !errors.Is(err, domain.ErrShareFailed) {
		t.Fatalf("expected ErrShareFailed, got %v", err)
	}
}

func TestLocalServiceServesSession(t *testing.T) {
	ds := domain.Dataset{
		ID:        "s",
		Questions: []domain.Question{{ID: 0, Topic: "A"}, {ID: 1, Topic: "B"}, {ID: 2, Topic: "C"}},
		Parties:   []domain.Party{{Name: "P", Color: "#000000", Scores: []float64{5, 5, 5}}},
	}
	session, err := completeSurvey(ds, []int{4, 6, 8})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	cfg := config.Config{}
	cfg.Share.Width, cfg.Share.Height = 120, 120
	service, err := localService(context.Background(), cfg, session, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("local service: %v", err)
	}

	state, err := service.State(context.Background(), session.ID())
	if err != nil || state.Phase != domain.PhaseResult {
		t.Fatalf("expected finished session, got %+v %v", state, err)
	}
	img, err := service.ExportImage(context.Background(), session.ID(), domain.FormatPNG)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(img.Data)); err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if _, err := service.Share(context.Background(), session.ID(), nil); !errors.Is(err, domain.ErrShareFailed) {
		t.Fatalf("expected ErrShareFailed without a host, got %v", err)
	}
}

func TestRunExportRejectsBadInput(t *testing.T) {
	cases := map[string]exportOptions{
		"too few answers": {answers: "5,5", format: "png"},
		"out of range":    {answers: strings.Replace(fourteenAnswers, "10", "11", 1), format: "png"},
		"not a number":    {answers: "5,x", format: "png"},
		"bad format":      {answers: fourteenAnswers, format: "gif"},
		"unknown dataset": {answers: fourteenAnswers, format: "png", datasetID: "nope"},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			opts.out = filepath.Join(t.TempDir(), "x.png")
			if err := runExport(context.Background(), config.Config{}, opts, &bytes.Buffer{}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCompleteSurveyErrors(t *testing.T) {
	ds := domain.Dataset{
		ID:        "s",
		Questions: []domain.Question{{ID: 0, Topic: "A"}},
		Parties:   []domain.Party{{Name: "X", Scores: []float64{1}}},
	}
	if _, err := completeSurvey(ds, nil); !errors.Is(err, domain.ErrSurveyIncomplete) {
		t.Fatalf("expected ErrSurveyIncomplete, got %v", err)
	}
	if _, err := completeSurvey(ds, []int{0}); !errors.Is(err, domain.ErrAnswerOutOfRange) {
		t.Fatalf("expected ErrAnswerOutOfRange, got %v", err)
	}
	session, err := completeSurvey(ds, []int{4})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	chart, err := session.Chart()
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if len(chart.Rows) != 1 || chart.Rows[0].User != 4 {
		t.Fatalf("unexpected chart %+v", chart)
	}
}

func TestFallbackLoader(t *testing.T) {
	primary := memory.NewStaticDatasetLoader(domain.Dataset{ID: "db"})
	fallback := memory.NewStaticDatasetLoader(domain.Dataset{ID: "bundled"})
	loader := fallbackLoader{primary: primary, fallback: fallback}

	if ds, err := loader.LoadDataset(context.Background(), "db"); err != nil || ds.ID != "db" {
		t.Fatalf("expected primary dataset, got %v %v", ds.ID, err)
	}
	if ds, err := loader.LoadDataset(context.Background(), "bundled"); err != nil || ds.ID != "bundled" {
		t.Fatalf("expected fallback dataset, got %v %v", ds.ID, err)
	}
	if _, err := loader.LoadDataset(context.Background(), "none"); !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("DEBUG").String() != "DEBUG" || parseLevel("").String() != "INFO" || parseLevel("warning").String() != "WARN" {
		t.Fatalf("unexpected level mapping")
	}
}
