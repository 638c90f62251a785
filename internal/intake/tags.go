package intake

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseTagTable reads a companion tag table with an ID column and a Tag
// column from CSV or XLSX content, keyed by the file extension. Header
// matching is case-insensitive. Rows with an empty ID are skipped.
func ParseTagTable(filename string, data []byte) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSVTags(data)
	case ".xlsx":
		return parseXLSXTags(data)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrTagTable, filepath.Ext(filename))
	}
}

func parseCSVTags(data []byte) (map[string]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTagTable, err)
	}

	idCol, tagCol, err := tagColumns(header)
	if err != nil {
		return nil, err
	}

	tags := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTagTable, err)
		}
		if idCol >= len(record) || tagCol >= len(record) {
			continue
		}
		id := strings.TrimSpace(record[idCol])
		if id == "" {
			continue
		}
		tags[id] = strings.TrimSpace(record[tagCol])
	}

	return tags, nil
}

func parseXLSXTags(data []byte) (map[string]string, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTagTable, err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrTagTable)
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTagTable, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty sheet", ErrTagTable)
	}

	idCol, tagCol, err := tagColumns(rows[0])
	if err != nil {
		return nil, err
	}

	tags := make(map[string]string)
	for _, row := range rows[1:] {
		if idCol >= len(row) {
			continue
		}
		id := strings.TrimSpace(row[idCol])
		if id == "" {
			continue
		}
		tag := ""
		if tagCol < len(row) {
			tag = strings.TrimSpace(row[tagCol])
		}
		tags[id] = tag
	}

	return tags, nil
}

func tagColumns(header []string) (int, int, error) {
	idCol, tagCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "id":
			idCol = i
		case "tag":
			tagCol = i
		}
	}
	if idCol == -1 || tagCol == -1 {
		return 0, 0, fmt.Errorf("%w: table requires ID and Tag columns", ErrTagTable)
	}
	return idCol, tagCol, nil
}
