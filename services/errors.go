package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yeremiapane/franchise-menu-sync/utils"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned for unknown master menu, branch or version ids.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRange is returned when a target version is outside what the branch may move to.
	ErrInvalidRange = errors.New("invalid version range")
	// ErrInvalidChanges is returned when a change set cannot be appended to the ledger.
	ErrInvalidChanges = errors.New("invalid change set")
	// ErrInvalidInput covers request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists is returned when registering a branch twice.
	ErrAlreadyExists = errors.New("already exists")
	// ErrLockContention is transient; the caller should retry the whole append.
	ErrLockContention = errors.New("master menu is locked by another writer")
)

const (
	pgLockNotAvailable   = "55P03"
	mysqlLockWaitTimeout = 1205
)

// isLockTimeout reports whether err is a row lock wait timeout from the database.
func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgLockNotAvailable
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlLockWaitTimeout
	}
	return false
}

// setLockTimeout bounds how long the current transaction waits for row locks.
// sqlite has no row locks, so there is nothing to set. MySQL only has a
// session-scoped setting; the returned restore puts the previous value back
// and must run before the transaction hands its connection back to the pool.
func setLockTimeout(tx *gorm.DB, timeout time.Duration) (restore func(), err error) {
	restore = func() {}
	if timeout <= 0 {
		return restore, nil
	}

	dialect := tx.Dialector.Name()
	var previous int64
	if dialect == "mysql" {
		if err := tx.Raw("SELECT @@SESSION.innodb_lock_wait_timeout").Scan(&previous).Error; err != nil {
			return restore, fmt.Errorf("failed to read lock wait timeout: %w", err)
		}
	}

	set, reset := lockTimeoutSQL(dialect, timeout, previous)
	if set == "" {
		return restore, nil
	}
	if err := tx.Exec(set).Error; err != nil {
		return restore, err
	}
	if reset != "" {
		restore = func() {
			if err := tx.Exec(reset).Error; err != nil {
				utils.LogError("services", "setLockTimeout", "Error restoring lock wait timeout", reset, err)
			}
		}
	}
	return restore, nil
}

// lockTimeoutSQL returns the statement that sets the lock wait for dialect and,
// when the setting outlives the transaction, the statement restoring previous.
func lockTimeoutSQL(dialect string, timeout time.Duration, previous int64) (set, reset string) {
	switch dialect {
	case "postgres":
		return fmt.Sprintf("SET LOCAL lock_timeout = %d", timeout.Milliseconds()), ""
	case "mysql":
		secs := int64(timeout / time.Second)
		if secs < 1 {
			secs = 1
		}
		return fmt.Sprintf("SET SESSION innodb_lock_wait_timeout = %d", secs),
			fmt.Sprintf("SET SESSION innodb_lock_wait_timeout = %d", previous)
	}
	return "", ""
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

// IsClientError reports whether err was caused by the request rather than the system.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidRange) || errors.Is(err, ErrInvalidChanges)
}
