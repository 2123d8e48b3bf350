package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"wahlnetz-service/internal/app"
	"wahlnetz-service/internal/domain"
	"wahlnetz-service/internal/tui"
)

// NewSurveyCmd runs the survey in the terminal.
func NewSurveyCmd(configPath *string) *cobra.Command {
	var (
		datasetID string
		outDir    string
		noColor   bool
	)
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Answer the survey in an interactive terminal wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSurvey(cmd.Context(), *configPath, datasetID, outDir, noColor)
		},
	}
	cmd.Flags().StringVar(&datasetID, "dataset", "", "dataset id (default: dataset.id from config)")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory exported charts are written to")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	return cmd
}

func runSurvey(ctx context.Context, configPath, datasetID, outDir string, noColor bool) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	// Keep log lines out of the wizard's screen.
	logger = newLogger(cfg, discardUnlessDebug(cfg))
	slog.SetDefault(logger)

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if datasetID == "" {
		datasetID = defaultDatasetID(cfg)
	}
	ds, err := datasetRepository(cfg, b).GetDataset(ctx, datasetID)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", datasetID, err)
	}

	session := app.NewSession(uuid.NewString(), ds)
	service, err := localService(ctx, cfg, session, logger)
	if err != nil {
		return err
	}
	opts := tui.Options{
		NoColor: noColor,
		Export: func(ctx context.Context, _ domain.Chart) (string, error) {
			img, err := service.ExportImage(ctx, session.ID(), domain.FormatPNG)
			if err != nil {
				return "", err
			}
			path := filepath.Join(outDir, "wahlnetz-"+session.ID()[:8]+img.Format.Ext())
			if err := os.WriteFile(path, img.Data, 0o644); err != nil {
				return "", err
			}
			logger.Info("chart exported", "path", path)
			return "Gespeichert: " + path, nil
		},
	}
	if cfg.Share.UploadURL != "" {
		opts.Share = func(ctx context.Context, _ domain.Chart) (string, error) {
			result, err := service.Share(ctx, session.ID(), domain.AllPlatforms)
			if err != nil {
				return "", err
			}
			return formatLinks(result.ImageURL, result.Links), nil
		}
	}

	_, err = tea.NewProgram(tui.NewModel(session, opts), tea.WithAltScreen()).Run()
	return err
}
