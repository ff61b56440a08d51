package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump flattens an error chain into loggable fields. When a postgres
// driver error is in the chain, its SQLSTATE and constraint identify the
// table rule that rejected the write.
type ErrorDump struct {
	TopMessage string
	Code       Code
	Chain      []string

	PGCode       string
	PGConstraint string
	PGDetail     string
	PGMessage    string
}

// Dump prepares err for structured logging.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}

	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	d.PGCode, d.PGConstraint, d.PGDetail, d.PGMessage = pgFields(err)
	return d
}

// pgFields pulls the postgres error attributes out of whichever driver
// produced them. Both pgx and lib/pq appear in the chain depending on the
// code path that touched the database.
func pgFields(err error) (code, constraint, detail, message string) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code, pgxErr.ConstraintName, pgxErr.Detail, pgxErr.Message
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, pqErr.Detail, pqErr.Message
	}

	return "", "", "", ""
}
