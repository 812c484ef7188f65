// Package repository implements the reservation ledger on MySQL. Errors
// that callers need to tell apart are translated to the storage contract
// sentinels of the booking package; everything else is returned as is.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/restaurant-table-booking/internal/booking"
)

// MySQL server error numbers the ledger reacts to.
const (
	errDupEntry = 1062
)

// isDuplicateKey reports whether err is a unique key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDupEntry
}

// notFound converts sql.ErrNoRows to booking.ErrRecordNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrRecordNotFound
	}
	return err
}
