package permission

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paulokalleby/api-vendas/internal/models"
)

// Resolver computes effective permission sets from the database. The
// result is never cached across requests so role and permission edits
// take effect on the next call.
type Resolver struct {
	pool *pgxpool.Pool
}

func NewResolver(pool *pgxpool.Pool) *Resolver {
	return &Resolver{pool: pool}
}

// Resolve returns the user's effective permission set. Owners bypass
// role lookups entirely; otherwise the set is the union of the
// permissions of the user's active roles.
func (r *Resolver) Resolve(ctx context.Context, user *models.User) (Set, error) {
	if user.Owner {
		return AllGranted(), nil
	}

	query := `
		SELECT res.name, res.action
		FROM role_user ru
		JOIN roles ro ON ro.id = ru.role_id AND ro.active = true AND ro.tenant_id = $2
		JOIN role_resource rr ON rr.role_id = ro.id
		JOIN resources res ON res.id = rr.resource_id
		WHERE ru.user_id = $1
	`

	rows, err := r.pool.Query(ctx, query, user.ID, user.TenantID)
	if err != nil {
		return Set{}, fmt.Errorf("failed to resolve permissions: %w", err)
	}
	defer rows.Close()

	var grants []Grant
	for rows.Next() {
		var g Grant
		var action string
		if err := rows.Scan(&g.Resource, &action); err != nil {
			return Set{}, fmt.Errorf("failed to scan permission: %w", err)
		}
		g.Action = Action(action)
		grants = append(grants, g)
	}
	if rows.Err() != nil {
		return Set{}, fmt.Errorf("error iterating permissions: %w", rows.Err())
	}

	return Explicit(grants), nil
}
