package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// MySQL server error numbers.
const (
	mysqlDuplicateEntry      = 1062
	mysqlRowIsReferenced     = 1451
	mysqlNoReferencedRow     = 1452
	mysqlLockWaitTimeout     = 1205
	mysqlDeadlock            = 1213
	mysqlCheckConstraintFail = 3819
)

// MapGormErrorToDomain converts GORM and driver errors to domain error kinds.
// Errors that match no known class are returned unchanged.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrAlreadyExists
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ErrInvalidReference
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: %s", domain.ErrBusinessRule, err.Error())
	}

	if kind := classify(err); kind != nil {
		if errors.Is(err, kind) {
			return err
		}
		return fmt.Errorf("%w: %s", kind, err.Error())
	}
	return err
}

// classify returns the domain kind for a raw driver error, or nil.
func classify(err error) error {
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		return domain.ErrConcurrencyConflict
	}
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return domain.ErrStoreUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return domain.ErrAlreadyExists
		case pgErr.Code == pgerrcode.ForeignKeyViolation:
			return domain.ErrInvalidReference
		case pgErr.Code == pgerrcode.CheckViolation:
			return domain.ErrBusinessRule
		case pgErr.Code == pgerrcode.SerializationFailure,
			pgErr.Code == pgerrcode.DeadlockDetected,
			pgErr.Code == pgerrcode.LockNotAvailable:
			return domain.ErrConcurrencyConflict
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgErr.Code == pgerrcode.AdminShutdown,
			pgErr.Code == pgerrcode.CrashShutdown,
			pgErr.Code == pgerrcode.CannotConnectNow,
			pgErr.Code == pgerrcode.TooManyConnections:
			return domain.ErrStoreUnavailable
		}
		return nil
	}
	var pgConnectErr *pgconn.ConnectError
	if errors.As(err, &pgConnectErr) {
		return domain.ErrStoreUnavailable
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return domain.ErrAlreadyExists
		case mysqlNoReferencedRow, mysqlRowIsReferenced:
			return domain.ErrInvalidReference
		case mysqlCheckConstraintFail:
			return domain.ErrBusinessRule
		case mysqlDeadlock, mysqlLockWaitTimeout:
			return domain.ErrConcurrencyConflict
		}
		return nil
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return domain.ErrConcurrencyConflict
		case sqlite3.ErrCantOpen, sqlite3.ErrIoErr:
			return domain.ErrStoreUnavailable
		case sqlite3.ErrConstraint:
			switch liteErr.ExtendedCode {
			case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
				return domain.ErrAlreadyExists
			case sqlite3.ErrConstraintForeignKey:
				return domain.ErrInvalidReference
			case sqlite3.ErrConstraintCheck:
				return domain.ErrBusinessRule
			}
		}
		return nil
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, mysql.ErrInvalidConn) {
		return domain.ErrStoreUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.ErrStoreUnavailable
	}
	return nil
}

// IsTransient reports whether err is a fault worth retrying before any work has run.
func IsTransient(err error) bool {
	return domain.IsRetryable(MapGormErrorToDomain(err))
}

// WrapError wraps a GORM operation and maps its error.
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(m).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
