package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"

	constraintOwnerSlug = "categories_owner_slug_key"
)

// pgCode devuelve el SQLSTATE y el constraint de un error de PostgreSQL, si lo es.
func pgCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	return code == codeUniqueViolation
}

// isSlugViolation violación del único (owner_id, slug).
func isSlugViolation(err error) bool {
	code, constraint := pgCode(err)
	return code == codeUniqueViolation && constraint == constraintOwnerSlug
}

func isForeignKeyViolation(err error) bool {
	code, _ := pgCode(err)
	return code == codeForeignKeyViolation
}

// isInvalidText un ID que no es UUID: para el llamador equivale a "no existe".
func isInvalidText(err error) bool {
	code, _ := pgCode(err)
	return code == codeInvalidText
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
