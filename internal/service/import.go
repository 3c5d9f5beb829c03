package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/csv"
)

// ImportPolicy decides what a bulk import does with a malformed row.
type ImportPolicy string

const (
	// ImportPolicySkip logs malformed rows and continues.
	ImportPolicySkip ImportPolicy = "skip"
	// ImportPolicyAbort stops the import at the first malformed row.
	ImportPolicyAbort ImportPolicy = "abort"
)

// ParseImportPolicy validates a policy string.
func ParseImportPolicy(s string) (ImportPolicy, error) {
	switch ImportPolicy(s) {
	case ImportPolicySkip, ImportPolicyAbort:
		return ImportPolicy(s), nil
	case "":
		return ImportPolicySkip, nil
	default:
		return "", fmt.Errorf("import policy must be %q or %q, got %q",
			ImportPolicySkip, ImportPolicyAbort, s)
	}
}

// ImportReport summarizes a bulk import. Failed is the aggregate flag:
// true when any row was malformed or any save was refused, even though
// every other row was still attempted.
type ImportReport struct {
	Rows   int      `json:"rows"`
	Saved  int      `json:"saved"`
	Failed bool     `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// ImportCSV bulk-loads Funkos from a delimited file, saving them one
// at a time. Per-row validation and store failures are logged and do
// not abort the remaining import; there is no rollback of rows already
// saved. The policy only governs malformed rows: with
// ImportPolicyAbort the first one stops the read, with
// ImportPolicySkip it is recorded and skipped. A file that cannot be
// opened fails the whole import.
func (s *CatalogService) ImportCSV(ctx context.Context, path string, policy ImportPolicy) (ImportReport, error) {
	var report ImportReport

	r, err := csv.Open(path)
	if err != nil {
		return report, err
	}
	defer func() { _ = r.Close() }()

	s.logger.Info("starting funko import",
		zap.String("path", path),
		zap.String("policy", string(policy)))

	for {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("import interrupted: %w", err)
		}

		funko, err := r.Next()
		if err == io.EOF {
			break
		}

		var rowErr *csv.RowError
		if errors.As(err, &rowErr) {
			report.Rows++
			report.Failed = true
			report.Errors = append(report.Errors, rowErr.Error())
			importRows.WithLabelValues("malformed").Inc()
			s.logger.Warn("malformed import row",
				zap.Int("line", rowErr.Line),
				zap.Error(rowErr.Err))

			if policy == ImportPolicyAbort {
				return report, fmt.Errorf("aborting import: %w", rowErr)
			}
			continue
		}
		if err != nil {
			return report, fmt.Errorf("reading import row: %w", err)
		}

		report.Rows++
		if _, err := s.Save(ctx, &funko); err != nil {
			report.Failed = true
			report.Errors = append(report.Errors, err.Error())
			importRows.WithLabelValues("failed").Inc()
			s.logger.Warn("import row not saved",
				zap.String("name", funko.Name),
				zap.Error(err))
			continue
		}

		report.Saved++
		importRows.WithLabelValues("saved").Inc()
	}

	s.logger.Info("funko import finished",
		zap.Int("rows", report.Rows),
		zap.Int("saved", report.Saved),
		zap.Bool("failed", report.Failed))
	return report, nil
}
