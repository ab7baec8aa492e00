package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var requiredColumns = []string{"project", "client", "developer", "hours", "date"}

// ReadCSV разбирает CSV с заголовком project,client,developer,hours,date[,description].
// Ошибки формата файла прерывают чтение; бизнес-проверки выполняет ImportRows.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		// пустые строки csv.Reader пропускает сам, поэтому номер берем из позиции поля
		line, _ := cr.FieldPos(0)
		get := func(name string) string {
			i, ok := idx[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if strings.Join(rec, "") == "" {
			continue
		}

		hours, err := strconv.ParseFloat(get("hours"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid hours %q", line, get("hours"))
		}
		rows = append(rows, Row{
			Project:       get("project"),
			ClientName:    get("client"),
			DeveloperName: get("developer"),
			Hours:         hours,
			Date:          get("date"),
			Description:   get("description"),
		})
	}
	return rows, nil
}
