package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrorDump expands an error chain for logs. Driver fields are filled from
// whichever database error sits in the chain.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`

	SQLiteCode     int `json:"sqlite_code,omitempty"`
	SQLiteExtended int `json:"sqlite_extended_code,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error(), Code: CodeOf(err)}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pgxErr):
		d.PGCode, d.PGConstraint, d.PGTable, d.PGDetail = pgxErr.Code, pgxErr.ConstraintName, pgxErr.TableName, pgxErr.Detail
	case errors.As(err, &pqErr):
		d.PGCode, d.PGConstraint, d.PGTable, d.PGDetail = string(pqErr.Code), pqErr.Constraint, pqErr.Table, pqErr.Detail
	case errors.As(err, &liteErr):
		d.SQLiteCode, d.SQLiteExtended = int(liteErr.Code), int(liteErr.ExtendedCode)
	}
	return d
}

// Fields flattens the dump into structured log fields, omitting empty ones.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error_code":  string(d.Code),
		"error_chain": d.Chain,
	}
	if d.PGCode != "" {
		fields["pg_code"] = d.PGCode
		fields["pg_constraint"] = d.PGConstraint
		fields["pg_table"] = d.PGTable
		fields["pg_detail"] = d.PGDetail
	}
	if d.SQLiteCode != 0 {
		fields["sqlite_code"] = d.SQLiteCode
		fields["sqlite_extended_code"] = d.SQLiteExtended
	}
	return fields
}
