package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"survey_insight_go/internal/service"
)

// readCSV 读取带表头的 CSV，返回 表头名(小写) -> 列下标 以及数据行。
func readCSV(r io.Reader, required ...string) (map[string]int, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("empty file")
	}
	if err != nil {
		return nil, nil, err
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		// Excel 导出的文件第一列可能带 BOM
		h = strings.TrimPrefix(h, "\uFEFF")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[strings.ToLower(name)]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return cols, records, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[strings.ToLower(name)]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseHierarchyCSV(r io.Reader) ([]service.HierarchyRow, error) {
	cols, records, err := readCSV(r, "Primary Tag", "Subtag")
	if err != nil {
		return nil, err
	}
	rows := make([]service.HierarchyRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, service.HierarchyRow{
			Primary: field(rec, cols, "Primary Tag"),
			Subtag:  field(rec, cols, "Subtag"),
		})
	}
	return rows, nil
}

// parseMappingCSV 的 Notes 列可选；QuestionID 非法时报错并带行号。
func parseMappingCSV(r io.Reader) ([]service.MappingRow, error) {
	cols, records, err := readCSV(r, "QuestionID", "TagName", "AssignmentType")
	if err != nil {
		return nil, err
	}
	rows := make([]service.MappingRow, 0, len(records))
	for i, rec := range records {
		raw := field(rec, cols, "QuestionID")
		qid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid QuestionID %q", i+2, raw)
		}
		rows = append(rows, service.MappingRow{
			QuestionID:     uint(qid),
			TagName:        field(rec, cols, "TagName"),
			AssignmentType: field(rec, cols, "AssignmentType"),
			Notes:          field(rec, cols, "Notes"),
		})
	}
	return rows, nil
}
