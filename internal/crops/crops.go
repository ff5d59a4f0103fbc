// Package crops loads crop reference tables for the irrigation engine.
//
// The bundled dataset is used when no path is configured. Operators can
// supply their own table as YAML, CSV or an Excel workbook; the file format
// is chosen by extension.
package crops

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/irrigation"
	"github.com/tphakala/irrigo/internal/logger"
)

//go:embed crops.yaml
var defaultDataset []byte

const componentCrops = "crops"

// dataset is the YAML document layout.
type dataset struct {
	Version string                   `yaml:"version"`
	Crops   []irrigation.CropProfile `yaml:"crops"`
}

func getLogger() logger.Logger {
	return logger.Global().Module("crops")
}

// Default returns the bundled crop table.
func Default() (*irrigation.CropTable, error) {
	return parseYAML(defaultDataset, "embedded")
}

// Load reads a crop table from path. An empty path returns the bundled table.
func Load(path string) (*irrigation.CropTable, error) {
	if path == "" {
		return Default()
	}

	var (
		table *irrigation.CropTable
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, errors.New(err).
				Component(componentCrops).
				Category(errors.CategoryFileIO).
				Context("path", path).
				Build()
		}
		table, err = parseYAML(data, filepath.Base(path))
	case ".csv":
		table, err = loadCSV(path)
	case ".xlsx":
		table, err = loadXLSX(path)
	default:
		return nil, errors.Newf("unsupported crop table format %q", ext).
			Component(componentCrops).
			Category(errors.CategoryConfiguration).
			Context("path", path).
			Build()
	}
	if err != nil {
		return nil, err
	}

	getLogger().Info("crop table loaded",
		logger.String("path", path),
		logger.Int("crops", table.Len()),
		logger.String("version", table.Version()))
	return table, nil
}

func parseYAML(data []byte, source string) (*irrigation.CropTable, error) {
	var ds dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, errors.New(err).
			Component(componentCrops).
			Category(errors.CategoryFileParsing).
			Context("source", source).
			Build()
	}
	version := ds.Version
	if version == "" {
		version = source
	}
	return buildTable(version, ds.Crops, source)
}

func buildTable(version string, profiles []irrigation.CropProfile, source string) (*irrigation.CropTable, error) {
	if len(profiles) == 0 {
		return nil, errors.Newf("crop table %s has no crops", source).
			Component(componentCrops).
			Category(errors.CategoryValidation).
			Build()
	}
	for _, p := range profiles {
		if p.MinWaterPerArea < 0 || p.MaxWaterPerArea < p.MinWaterPerArea {
			return nil, errors.Newf("crop %q has invalid water range %.0f-%.0f", p.Name, p.MinWaterPerArea, p.MaxWaterPerArea).
				Component(componentCrops).
				Category(errors.CategoryValidation).
				Context("source", source).
				Build()
		}
		if p.OptimalMoisturePercent < 0 || p.OptimalMoisturePercent > 100 {
			return nil, errors.Newf("crop %q has optimal moisture %.1f outside 0-100", p.Name, p.OptimalMoisturePercent).
				Component(componentCrops).
				Category(errors.CategoryValidation).
				Context("source", source).
				Build()
		}
	}

	table, err := irrigation.NewCropTable(version, profiles...)
	if err != nil {
		return nil, errors.New(err).
			Component(componentCrops).
			Category(errors.CategoryValidation).
			Context("source", source).
			Build()
	}
	return table, nil
}

// DisplayName renders a crop key for people, e.g. "sweet corn" as "Sweet Corn".
func DisplayName(name string) string {
	return cases.Title(language.English).String(name)
}
