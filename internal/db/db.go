package db

import "database/sql"

// DB wraps the shared sql handle so services depend on one type.
type DB struct {
	*sql.DB
}
