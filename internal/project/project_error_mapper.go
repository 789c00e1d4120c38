package project

import (
	"errors"

	projecterrors "go-hrms/internal/project/errors"
	"go-hrms/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	return mapRepositoryErrorAs(err, projecterrors.ErrProjectNotFound)
}

func mapTaskError(err error) error {
	return mapRepositoryErrorAs(err, projecterrors.ErrProjectOrTaskNotFound)
}

func mapRepositoryErrorAs(err, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "22P02":
			return notFound
		case "40001":
			return apperror.ErrConcurrentUpdate
		case "23503":
			return projecterrors.ErrAssigneeNotFound
		}
	}
	return err
}
