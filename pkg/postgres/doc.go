// Package postgres wraps GORM with connection monitoring and the small CRUD
// surface the document repository needs: create, lookups, paginated finds,
// counted conditional updates (used for compare-and-swap status transitions)
// and transactions.
//
// The wrapper keeps a RWMutex around the gorm.DB handle so a background
// reconnect loop can swap the connection without racing in-flight queries.
package postgres
