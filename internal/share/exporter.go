package share

import (
	"context"

	"wahlnetz-service/internal/domain"
)

// Exporter renders charts and encodes them in the requested format.
type Exporter struct {
	renderer    RadarRenderer
	jpegQuality int
}

func NewExporter(renderer RadarRenderer, jpegQuality int) *Exporter {
	return &Exporter{renderer: renderer, jpegQuality: jpegQuality}
}

func (e *Exporter) Export(ctx context.Context, c domain.Chart, format domain.ImageFormat) (domain.Image, error) {
	if format != domain.FormatPNG && format != domain.FormatJPEG {
		return domain.Image{}, domain.ErrUnsupportedFormat
	}
	if err := ctx.Err(); err != nil {
		return domain.Image{}, err
	}
	data, err := e.renderer.Render(c)
	if err != nil {
		return domain.Image{}, err
	}
	if format == domain.FormatJPEG {
		if data, err = PNGToJPEG(data, e.jpegQuality); err != nil {
			return domain.Image{}, err
		}
	}
	return domain.Image{Format: format, Data: data}, nil
}
