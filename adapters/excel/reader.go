package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"divnest/domain/community"
	"divnest/domain/core"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"
)

// DataReader reads community data tables from Excel or CSV files. The first
// column holds row labels (site or species IDs), the header row holds column
// labels.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader that handles both Excel and CSV files.
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadAbundanceTable loads a sites-by-species abundance table.
func (r *DataReader) ReadAbundanceTable() (*community.AbundanceTable, error) {
	labels, headers, cells, err := r.readGrid()
	if err != nil {
		return nil, err
	}
	species := make([]core.SpeciesID, len(headers))
	for j, h := range headers {
		species[j] = core.SpeciesID(h)
	}
	sites := make([]core.SiteID, len(labels))
	counts := make([][]float64, len(labels))
	for i, label := range labels {
		sites[i] = core.SiteID(label)
		row := make([]float64, len(headers))
		for j := range headers {
			v, err := strconv.ParseFloat(cells[i][j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %s, column %s: %w", label, headers[j], err)
			}
			row[j] = v
		}
		counts[i] = row
	}
	return community.NewAbundanceTable(sites, species, counts)
}

// ReadStructureTable loads a sites-by-levels grouping table. Columns are
// hierarchy levels, finest first.
func (r *DataReader) ReadStructureTable() (*community.StructureTable, error) {
	labels, headers, cells, err := r.readGrid()
	if err != nil {
		return nil, err
	}
	sites := make([]core.SiteID, len(labels))
	assignments := make([][]core.GroupID, len(labels))
	for i, label := range labels {
		sites[i] = core.SiteID(label)
		row := make([]core.GroupID, len(headers))
		for j := range headers {
			row[j] = core.GroupID(cells[i][j])
		}
		assignments[i] = row
	}
	return community.NewStructureTable(sites, headers, assignments)
}

// ReadDissimilarity loads a square species-by-species dissimilarity matrix.
func (r *DataReader) ReadDissimilarity() (*community.DissimilarityMatrix, error) {
	labels, headers, cells, err := r.readGrid()
	if err != nil {
		return nil, err
	}
	if len(labels) != len(headers) {
		return nil, fmt.Errorf("dissimilarity must be square: %d rows, %d columns", len(labels), len(headers))
	}
	n := len(headers)
	species := make([]core.SpeciesID, n)
	for j, h := range headers {
		species[j] = core.SpeciesID(h)
	}
	dist := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v, err := strconv.ParseFloat(cells[i][j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %s, column %s: %w", labels[i], headers[j], err)
			}
			dist.SetSym(i, j, v)
		}
	}
	return community.NewDissimilarityMatrix(species, dist)
}

// readGrid returns row labels, column headers and the string cell grid.
func (r *DataReader) readGrid() ([]string, []string, [][]string, error) {
	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, nil, nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	if len(rows) < 2 || len(rows[0]) < 2 {
		return nil, nil, nil, fmt.Errorf("%s needs a header row, a label column and at least one data cell", r.filePath)
	}

	headers := make([]string, len(rows[0])-1)
	for j, h := range rows[0][1:] {
		headers[j] = strings.TrimSpace(h)
	}
	labels := make([]string, 0, len(rows)-1)
	cells := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(headers)+1 {
			return nil, nil, nil, fmt.Errorf("row %q has %d cells, want %d", row[0], len(row), len(headers)+1)
		}
		labels = append(labels, strings.TrimSpace(row[0]))
		trimmed := make([]string, len(headers))
		for j, cell := range row[1:] {
			trimmed[j] = strings.TrimSpace(cell)
		}
		cells = append(cells, trimmed)
	}
	return labels, headers, cells, nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read first sheet: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}
