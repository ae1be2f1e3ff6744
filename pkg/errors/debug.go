package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Report captures the loggable shape of an error: the coded wrapper at the
// top, every link of the unwrap chain, and any database driver fields buried
// inside it. It exists so request logging never has to type-switch on driver
// errors itself.
type Report struct {
	Message string   `json:"message"`
	Code    Code     `json:"code,omitempty"`
	Chain   []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

// Describe walks the error chain and builds a Report.
func Describe(err error) Report {
	if err == nil {
		return Report{}
	}

	report := Report{Message: err.Error()}
	if coded := As(err); coded != nil {
		report.Code = coded.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		report.Chain = append(report.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		report.PGCode = pgxErr.Code
		report.PGConstraint = pgxErr.ConstraintName
		report.PGTable = pgxErr.TableName
		report.PGColumn = pgxErr.ColumnName
		report.PGDetail = pgxErr.Detail
		report.PGMessage = pgxErr.Message
		return report
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		report.PGCode = string(pqErr.Code)
		report.PGConstraint = pqErr.Constraint
		report.PGTable = pqErr.Table
		report.PGColumn = pqErr.Column
		report.PGDetail = pqErr.Detail
		report.PGMessage = pqErr.Message
	}
	return report
}

// LogFields flattens the report for structured logging. Empty driver fields
// are omitted.
func (r Report) LogFields() map[string]any {
	fields := map[string]any{
		"error":       r.Message,
		"error_chain": r.Chain,
	}
	if r.Code != "" {
		fields["error_code"] = r.Code
	}
	if r.PGCode != "" {
		fields["pg_code"] = r.PGCode
	}
	if r.PGConstraint != "" {
		fields["pg_constraint"] = r.PGConstraint
	}
	if r.PGTable != "" {
		fields["pg_table"] = r.PGTable
	}
	if r.PGColumn != "" {
		fields["pg_column"] = r.PGColumn
	}
	if r.PGDetail != "" {
		fields["pg_detail"] = r.PGDetail
	}
	if r.PGMessage != "" {
		fields["pg_message"] = r.PGMessage
	}
	return fields
}
