package crops

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tphakala/irrigo/internal/errors"
	"github.com/tphakala/irrigo/internal/irrigation"
)

// Column header aliases accepted by the CSV and XLSX loaders.
var headerAliases = map[string]string{
	"name":                     "name",
	"crop":                     "name",
	"min":                      "min",
	"min_water":                "min",
	"min_water_per_area":       "min",
	"max":                      "max",
	"max_water":                "max",
	"max_water_per_area":       "max",
	"optimal":                  "optimal",
	"optimal_moisture":         "optimal",
	"optimal_moisture_percent": "optimal",
}

func loadCSV(path string) (*irrigation.CropTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component(componentCrops).
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.Comment = '#'
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.New(err).
			Component(componentCrops).
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Build()
	}
	return rowsToTable(rows, filepath.Base(path))
}

func loadXLSX(path string) (*irrigation.CropTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.New(err).
			Component(componentCrops).
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Newf("workbook %s has no sheets", filepath.Base(path)).
			Component(componentCrops).
			Category(errors.CategoryFileParsing).
			Build()
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.New(err).
			Component(componentCrops).
			Category(errors.CategoryFileParsing).
			Context("path", path).
			Context("sheet", sheets[0]).
			Build()
	}
	return rowsToTable(rows, filepath.Base(path))
}

// rowsToTable maps a header row plus data rows onto crop profiles.
// Blank rows are skipped.
func rowsToTable(rows [][]string, source string) (*irrigation.CropTable, error) {
	if len(rows) == 0 {
		return nil, errors.Newf("crop table %s is empty", source).
			Component(componentCrops).
			Category(errors.CategoryFileParsing).
			Build()
	}

	cols := make(map[string]int, 4)
	for i, h := range rows[0] {
		if key, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[key] = i
		}
	}
	for _, required := range []string{"name", "min", "max", "optimal"} {
		if _, ok := cols[required]; !ok {
			return nil, errors.Newf("crop table %s is missing the %s column", source, required).
				Component(componentCrops).
				Category(errors.CategoryFileParsing).
				Build()
		}
	}

	profiles := make([]irrigation.CropProfile, 0, len(rows)-1)
	for n, row := range rows[1:] {
		cell := func(key string) string {
			if i := cols[key]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		if cell("name") == "" {
			continue
		}

		p := irrigation.CropProfile{Name: cell("name")}
		for key, dst := range map[string]*float64{
			"min":     &p.MinWaterPerArea,
			"max":     &p.MaxWaterPerArea,
			"optimal": &p.OptimalMoisturePercent,
		} {
			v, err := strconv.ParseFloat(cell(key), 64)
			if err != nil {
				return nil, errors.New(err).
					Component(componentCrops).
					Category(errors.CategoryFileParsing).
					Context("source", source).
					Context("row", n+2).
					Context("column", key).
					Build()
			}
			*dst = v
		}
		profiles = append(profiles, p)
	}

	return buildTable(source, profiles, source)
}
