package file

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"wahlnetz-service/internal/domain"
)

//go:embed wahlnetz.yaml
var defaultDataset []byte

// DefaultDatasetID is the id of the dataset bundled with the binary.
const DefaultDatasetID = "btw2025"

// Parse decodes a YAML dataset and prepares it (positional ids, colors, validation).
func Parse(data []byte) (domain.Dataset, error) {
	var ds domain.Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: %v", domain.ErrInvalidDataset, err)
	}
	return ds.Prepare()
}

// Default returns the bundled dataset.
func Default() (domain.Dataset, error) {
	return Parse(defaultDataset)
}

// ReadFile parses a dataset YAML file.
func ReadFile(path string) (domain.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Dataset{}, err
	}
	ds, err := Parse(data)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// DatasetLoader serves datasets from YAML files in a directory, named <id>.yaml,
// and always knows the bundled dataset.
type DatasetLoader struct {
	dir string
}

// NewDatasetLoader returns a loader for dir. An empty dir only serves the bundled dataset.
func NewDatasetLoader(dir string) *DatasetLoader {
	return &DatasetLoader{dir: dir}
}

func (l *DatasetLoader) LoadDataset(_ context.Context, datasetID string) (domain.Dataset, error) {
	if l.dir != "" && validID(datasetID) {
		path := filepath.Join(l.dir, datasetID+".yaml")
		if _, err := os.Stat(path); err == nil {
			ds, err := ReadFile(path)
			if err != nil {
				return domain.Dataset{}, err
			}
			if ds.ID != datasetID {
				return domain.Dataset{}, fmt.Errorf("%w: %s declares id %q", domain.ErrInvalidDataset, path, ds.ID)
			}
			return ds, nil
		}
	}
	if datasetID == DefaultDatasetID {
		return Default()
	}
	return domain.Dataset{}, domain.ErrDatasetNotFound
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}
