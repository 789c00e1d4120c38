package funtask

import (
	"errors"

	funtaskerrors "go-hrms/internal/funtask/errors"
	"go-hrms/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return funtaskerrors.ErrFunTaskNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "22P02":
			return funtaskerrors.ErrFunTaskNotFound
		case "40001":
			return apperror.ErrConcurrentUpdate
		case "23503":
			return funtaskerrors.ErrAssigneeNotFound
		}
	}
	return err
}
