package pkg

import "time"

// Now is the timestamp written to created_at/updated_at columns. Second
// precision keeps values identical across MySQL and Postgres.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
