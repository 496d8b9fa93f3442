package catalogimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

const columns = 4

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Run parses every row of r before writing anything, so a malformed line
// aborts the whole import with its line number.
func (s *Service) Run(ctx context.Context, r io.Reader) (Result, error) {
	rows, err := Parse(r)
	if err != nil {
		return Result{}, err
	}

	inserted, err := s.repo.InsertBooks(ctx, rows)
	if err != nil {
		return Result{}, err
	}

	res := Result{Rows: len(rows), Inserted: inserted, Skipped: len(rows) - inserted}
	s.log.InfoContext(ctx, "catalog import finished",
		"rows", res.Rows,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
	)
	return res, nil
}

// Parse reads the header line and then every data row of r.
func Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("input is empty: expected a header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if len(record) != columns {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, columns, len(record))
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid year %q", line, record[3])
		}
		rows = append(rows, Row{
			Line:   line,
			ISBN:   record[0],
			Title:  record[1],
			Author: record[2],
			Year:   year,
		})
	}
	return rows, nil
}
