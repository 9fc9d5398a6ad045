package common

import (
	"database/sql"

	"github.com/apex/log"
)

// LogResult reports the outcome of a write statement. With checkOneRow set
// it warns when the statement touched anything other than exactly one row.
func LogResult(msgPrefix string, r sql.Result, e error, checkOneRow bool) {
	if e != nil {
		log.Errorf("%s: query failed: %v", msgPrefix, e)
		return
	}
	rows, err := r.RowsAffected()
	if err != nil {
		log.Errorf("%s: failed to get status of db op: %v", msgPrefix, err)
		return
	}
	if checkOneRow && rows != 1 {
		log.Warnf("%s: expected to affect 1 row, affected %d", msgPrefix, rows)
	}
}
