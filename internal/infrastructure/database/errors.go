package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Chibuzo15/crm-project-sub000/internal/utils/platformerrors"
)

// Postgres SQLSTATE codes the repositories react to.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// TranslateError maps gorm and Postgres errors onto the platform taxonomy.
// Serialization failures, deadlocks, and unique violations become conflicts
// so the domain can retry them.
func TranslateError(ctx context.Context, err error, message, code string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, message, nil, code)
	}
	if pe := platformerrors.GetPlatformError(err); pe != nil {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeUniqueViolation:
			return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
				message, err, code, map[string]any{"sqlstate": pgErr.Code})
		case codeForeignKeyViolation:
			return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
				message+": referenced record does not exist", err, code, map[string]any{"constraint": pgErr.ConstraintName})
		}
	}

	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, message, err, code)
}
