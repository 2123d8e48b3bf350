package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wahlnetz-service/internal/app"
	"wahlnetz-service/internal/config"
	"wahlnetz-service/internal/domain"
)

type exportOptions struct {
	datasetID string
	answers   string
	format    string
	out       string
	share     bool
}

// NewExportCmd renders the chart for a full answer list without the wizard.
func NewExportCmd(configPath *string) *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the radar chart for a list of answers",
		Example: "  wahlnetz export --answers 5,7,3,10,1,8,6,4,9,2,5,5,7,3 --format png --out wahlnetz.png\n" +
			"  wahlnetz export --answers ... --share",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.datasetID, "dataset", "", "dataset id (default: dataset.id from config)")
	cmd.Flags().StringVar(&opts.answers, "answers", "", "comma separated answers, one per question (1-10)")
	cmd.Flags().StringVar(&opts.format, "format", "png", "image format: png or jpeg")
	cmd.Flags().StringVar(&opts.out, "out", "", "output file (default: wahlnetz.<ext>)")
	cmd.Flags().BoolVar(&opts.share, "share", false, "upload the image and print share links")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func runExport(ctx context.Context, cfg config.Config, opts exportOptions, stdout io.Writer) error {
	answers, err := parseAnswers(opts.answers)
	if err != nil {
		return err
	}
	format, err := domain.ParseImageFormat(opts.format)
	if err != nil {
		return fmt.Errorf("%w: %s", err, opts.format)
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	datasetID := opts.datasetID
	if datasetID == "" {
		datasetID = defaultDatasetID(cfg)
	}
	ds, err := datasetRepository(cfg, b).GetDataset(ctx, datasetID)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", datasetID, err)
	}

	session, err := completeSurvey(ds, answers)
	if err != nil {
		return err
	}
	service, err := localService(ctx, cfg, session, slog.Default())
	if err != nil {
		return err
	}

	img, err := service.ExportImage(ctx, session.ID(), format)
	if err != nil {
		return err
	}
	out := opts.out
	if out == "" {
		out = "wahlnetz" + format.Ext()
	}
	if err := os.WriteFile(out, img.Data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", out, len(img.Data))

	if !opts.share {
		return nil
	}
	result, err := service.Share(ctx, session.ID(), domain.AllPlatforms)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, formatLinks(result.ImageURL, result.Links))
	return nil
}

// completeSurvey runs answers through a fresh session, so the same range and
// completeness rules apply as in the interactive flows.
func completeSurvey(ds domain.Dataset, answers []int) (*app.Session, error) {
	if len(answers) != len(ds.Questions) {
		return nil, fmt.Errorf("%w: got %d answers for %d questions",
			domain.ErrSurveyIncomplete, len(answers), len(ds.Questions))
	}
	session := app.NewSession("export", ds)
	if _, err := session.Start(); err != nil {
		return nil, err
	}
	for i, v := range answers {
		if _, err := session.SubmitAnswer(v); err != nil {
			return nil, fmt.Errorf("answer %d (%s): %w", i+1, ds.Questions[i].Topic, err)
		}
	}
	return session, nil
}

func parseAnswers(raw string) ([]int, error) {
	fields := strings.Split(raw, ",")
	answers := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid answer %q: %w", f, err)
		}
		answers = append(answers, n)
	}
	return answers, nil
}

func formatLinks(imageURL string, links []domain.ShareLink) string {
	var b strings.Builder
	b.WriteString("Bild: " + imageURL)
	for _, l := range links {
		fmt.Fprintf(&b, "\n%-9s %s", l.Platform, l.WebURL)
	}
	return b.String()
}
