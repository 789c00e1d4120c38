package leave

import (
	"errors"

	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "22P02":
			return leaveerrors.ErrLeaveNotFound
		case "40001":
			return apperror.ErrConcurrentUpdate
		}
	}
	return err
}
