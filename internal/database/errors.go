package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
)

// translate maps driver errors onto domain errors. Unknown errors pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return fmt.Errorf("%w: %v", domain.ErrTxConflict, err)
	}

	if isForeignKeyViolation(err) {
		return &domain.Error{Code: domain.CodeNotFound, Message: "referenced record does not exist", Err: err}
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return domain.DuplicateKey(uniqueField(sqliteErr.Error()), err)
	case sqlite3.ErrConstraintCheck:
		return &domain.Error{Code: domain.CodeValidation, Message: "value violates a table constraint", Err: err}
	}
	return err
}

// uniqueField extracts "room_number" from "UNIQUE constraint failed: rooms.room_number".
func uniqueField(msg string) string {
	_, cols, ok := strings.Cut(msg, "failed: ")
	if !ok {
		return "unique key"
	}
	first, _, _ := strings.Cut(cols, ",")
	if _, col, ok := strings.Cut(strings.TrimSpace(first), "."); ok {
		return col
	}
	return strings.TrimSpace(first)
}

// isForeignKeyViolation matches both FK failure forms: deferred checks report
// SQLITE_CONSTRAINT_FOREIGNKEY, while ON DELETE RESTRICT fires as
// SQLITE_CONSTRAINT_TRIGGER.
func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return false
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintTrigger:
		return true
	}
	return strings.Contains(sqliteErr.Error(), "FOREIGN KEY constraint failed")
}

func notFoundOr(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(entity, id)
	}
	return fmt.Errorf("failed to get %s %d: %w", entity, id, translate(err))
}
