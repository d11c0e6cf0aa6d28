package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/wordbox/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath      string // Path to the Excel or CSV file
	EnglishColumn string // Column with the English word
	PersianColumn string // Column with the Persian meaning
	SheetName     string // Sheet to import, the first sheet when empty
	StartRow      int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		EnglishColumn: "A",
		PersianColumn: "B",
		StartRow:      2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// WordInserter stores imported words, ignoring duplicates, and returns how
// many were inserted
type WordInserter interface {
	CreateMany(ctx context.Context, words []models.Word) (int, error)
}

// Importer reads word lists from spreadsheets
type Importer struct {
	words WordInserter
	now   func() time.Time
}

// NewImporter creates a new importer
func NewImporter(words WordInserter) *Importer {
	return &Importer{words: words, now: time.Now}
}

// ImportFile imports words from an Excel or CSV file on disk
func (i *Importer) ImportFile(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return i.ImportReader(ctx, file, filepath.Ext(config.FilePath), config)
}

// ImportReader imports words from r. ext selects the format (".csv", anything
// else is read as xlsx).
func (i *Importer) ImportReader(ctx context.Context, r io.Reader, ext string, config ImportConfig) (*ImportResult, error) {
	config = withDefaults(config)

	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(ext, ".csv") {
		rows, err = readCSV(r)
	} else {
		rows, err = readExcel(r, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	words := i.collectWords(rows, config, result)

	if len(words) > 0 {
		created, err := i.words.CreateMany(ctx, words)
		if err != nil {
			return nil, fmt.Errorf("failed to save words: %w", err)
		}
		result.Created = created
		result.Skipped += len(words) - created
	}
	return result, nil
}

func withDefaults(config ImportConfig) ImportConfig {
	def := DefaultImportConfig()
	if config.EnglishColumn == "" {
		config.EnglishColumn = def.EnglishColumn
	}
	if config.PersianColumn == "" {
		config.PersianColumn = def.PersianColumn
	}
	if config.StartRow <= 0 {
		config.StartRow = def.StartRow
	}
	return config
}

// readExcel returns the rows of the named sheet, or of the first sheet
func readExcel(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return rows, nil
}

// collectWords turns rows into new words. Rows with a blank cell, a "."
// placeholder or an English word already seen in the file are skipped.
func (i *Importer) collectWords(rows [][]string, config ImportConfig, result *ImportResult) []models.Word {
	englishIdx := columnToIndex(config.EnglishColumn)
	persianIdx := columnToIndex(config.PersianColumn)
	now := i.now()

	seen := make(map[string]bool)
	words := make([]models.Word, 0, len(rows))

	for idx, row := range rows {
		rowNum := idx + 1
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++

		english := cell(row, englishIdx)
		persian := cell(row, persianIdx)

		switch {
		case english == "" && persian == "":
			result.Skipped++
			continue
		case english == "" || english == ".":
			result.Skipped++
			continue
		case persian == "":
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: meaning of %q is empty", rowNum, english))
			continue
		}

		key := strings.ToLower(english)
		if seen[key] {
			result.Skipped++
			continue
		}
		seen[key] = true

		words = append(words, models.NewWord(english, persian, now))
	}
	return words
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
