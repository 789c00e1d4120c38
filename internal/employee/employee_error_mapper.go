package employee

import (
	"errors"
	"strings"

	employeeerrors "go-hrms/internal/employee/errors"
	"go-hrms/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const emailUniqueConstraint = "uq_employees_email"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}
	if IsDuplicateEmail(err) {
		return employeeerrors.ErrDuplicateEmail
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "22P02":
			return employeeerrors.ErrEmployeeNotFound
		case "40001":
			return apperror.ErrConcurrentUpdate
		}
	}

	return err
}

// IsDuplicateEmail recognises the unique email violation from postgres and
// from drivers that only surface a message.
func IsDuplicateEmail(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && (pgErr.ConstraintName == emailUniqueConstraint || pgErr.ConstraintName == "")
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, emailUniqueConstraint) {
		return true
	}
	return strings.Contains(errMsg, "unique constraint failed") && strings.Contains(errMsg, "employees.email")
}
