package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/HappyHacker143/taskflow/internal/apperror"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// fieldErrors collects per-field validation messages; the first message for a
// field wins.
type fieldErrors map[string]string

func (f fieldErrors) add(field string, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperror.Validation(f)
}

func normalizeRequiredString(raw string, field string, maxLength int) (string, string) {
	value := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(value)
	if length < 1 || length > maxLength {
		return "", fmt.Sprintf("%s length must be in range 1..%d", field, maxLength)
	}
	return value, ""
}

func normalizeOptionalString(raw string, field string, maxLength int) (string, string) {
	value := strings.TrimSpace(raw)
	if utf8.RuneCountInString(value) > maxLength {
		return "", fmt.Sprintf("%s must be at most %d characters", field, maxLength)
	}
	return value, ""
}

func normalizeColor(raw string, fallback string) (string, string) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return fallback, ""
	}
	if !hexColorPattern.MatchString(value) {
		return "", "color must be a hex value like #4F46E5"
	}
	return value, ""
}

// likePattern builds a case-insensitive LIKE pattern matching term anywhere.
func likePattern(term string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(strings.ToLower(term)) + "%"
}

// searchAny matches term against any of the given columns.
func searchAny(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return query
	}

	pattern := likePattern(term)
	clauses := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		clauses = append(clauses, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column))
		args = append(args, pattern)
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

func notFound(entity string) error {
	return apperror.New(apperror.CodeNotFound, entity+" not found")
}

func equalUintPtr(a *uint, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func mapDatabaseError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return apperror.New(apperror.CodeConflict, "resource with the same unique attributes already exists")
		}
		if pgErr.Code == "23503" {
			return apperror.New(apperror.CodeValidation, "invalid foreign key reference")
		}
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return apperror.New(apperror.CodeConflict, "resource with the same unique attributes already exists")
		case sqlite3.ErrConstraintForeignKey:
			return apperror.New(apperror.CodeValidation, "invalid foreign key reference")
		}
	}
	return err
}
