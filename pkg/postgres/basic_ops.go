package postgres

import (
	"context"
)

// Find finds records that match the given conditions
func (p *Postgres) Find(ctx context.Context, dest interface{}, conditions ...interface{}) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.client.WithContext(ctx).Find(dest, conditions...).Error
}

// FindPage finds records matching a condition with limit/offset pagination
// and an optional ORDER BY clause.
func (p *Postgres) FindPage(ctx context.Context, dest interface{}, limit, offset int, orderBy, condition string, args ...interface{}) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	q := p.client.WithContext(ctx)
	if condition != "" {
		q = q.Where(condition, args...)
	}
	if orderBy != "" {
		q = q.Order(orderBy)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q.Find(dest).Error
}

// First finds the first record that matches the given conditions
func (p *Postgres) First(ctx context.Context, dest interface{}, conditions ...interface{}) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.client.WithContext(ctx).First(dest, conditions...).Error
}

// Create creates a new record
func (p *Postgres) Create(ctx context.Context, value interface{}) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.client.WithContext(ctx).Create(value).Error
}

// Save updates a record
func (p *Postgres) Save(ctx context.Context, value interface{}) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.client.WithContext(ctx).Save(value).Error
}

// UpdateWhere updates records matching the given condition and reports how
// many rows were affected. Used for compare-and-swap status transitions.
func (p *Postgres) UpdateWhere(ctx context.Context, model interface{}, attrs map[string]interface{}, condition string, args ...interface{}) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := p.client.WithContext(ctx).Model(model).Where(condition, args...).Updates(attrs)
	return result.RowsAffected, result.Error
}

// Count counts records that match the given conditions
func (p *Postgres) Count(ctx context.Context, model interface{}, count *int64, condition string, args ...interface{}) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	q := p.client.WithContext(ctx).Model(model)
	if condition != "" {
		q = q.Where(condition, args...)
	}
	return q.Count(count).Error
}

// Exec executes raw SQL
func (p *Postgres) Exec(ctx context.Context, sql string, values ...interface{}) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.client.WithContext(ctx).Exec(sql, values...).Error
}
