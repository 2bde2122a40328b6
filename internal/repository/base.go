package repository

import "time"

// nowUTC is the timestamp source for raw INSERT statements. Binding the
// value instead of calling NOW() in SQL keeps the statements portable
// across PostgreSQL and the SQLite test database.
func nowUTC() time.Time {
	return time.Now().UTC()
}
