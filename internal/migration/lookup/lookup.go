// Package lookup builds the natural-key → surrogate-key maps used to
// resolve legacy references. Maps are built once per run and read-only
// afterwards.
package lookup

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/oakridge-cabinets/migrate/pkg/composables"
)

// Maps translates legacy identifiers to surrogate keys. Keys are trimmed
// exactly as the source side trims them; lookup is exact-match.
type Maps struct {
	// Clients by legacy_id.
	Clients map[string]int64
	// Species, Colors and DoorStyles by normalized name.
	Species    map[string]int64
	Colors     map[string]int64
	DoorStyles map[string]int64
	// Installers by legacy_installer_id; installers without one are not
	// resolvable and are left out.
	Installers map[string]int64
	// Jobs by the parent sales_order_number, for the service migration.
	Jobs map[string]int64
}

// Get resolves key in m; a nil key or a miss returns (0, false). The caller
// decides whether a miss is fatal.
func Get(m map[string]int64, key *string) (int64, bool) {
	if key == nil {
		return 0, false
	}
	id, ok := m[*key]
	return id, ok
}

func fetchMap(ctx context.Context, db composables.DB, query string) (map[string]int64, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]int64)
	for rows.Next() {
		var key *string
		var id int64
		if err := rows.Scan(&key, &id); err != nil {
			return nil, err
		}
		if key == nil {
			continue
		}
		m[*key] = id
	}
	return m, rows.Err()
}

// Fetch loads every lookup map in one pass over the target store.
func Fetch(ctx context.Context) (*Maps, error) {
	db, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	queries := []struct {
		name  string
		query string
		dst   *map[string]int64
	}{
		{"clients", `SELECT trim(legacy_id), id FROM client`, nil},
		{"species", `SELECT trim("Species"), "Id" FROM species`, nil},
		{"colors", `SELECT trim("Name"), "Id" FROM colors`, nil},
		{"door styles", `SELECT trim(name), id FROM door_styles`, nil},
		{"installers", `SELECT trim(legacy_installer_id), installer_id FROM installers WHERE legacy_installer_id IS NOT NULL`, nil},
	}

	maps := &Maps{}
	queries[0].dst = &maps.Clients
	queries[1].dst = &maps.Species
	queries[2].dst = &maps.Colors
	queries[3].dst = &maps.DoorStyles
	queries[4].dst = &maps.Installers

	for _, q := range queries {
		m, err := fetchMap(ctx, db, q.query)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch %s lookup", q.name)
		}
		*q.dst = m
	}

	jobs, err := FetchJobs(ctx)
	if err != nil {
		return nil, err
	}
	maps.Jobs = jobs
	return maps, nil
}

// FetchJobs maps legacy sales-order numbers to the surrogate keys of the
// jobs already loaded for them.
func FetchJobs(ctx context.Context) (map[string]int64, error) {
	db, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	m, err := fetchMap(ctx, db, `
		SELECT trim(so.sales_order_number), j.id
		FROM jobs j
		JOIN sales_orders so ON j.sales_order_id = so.id`)
	if err != nil {
		return nil, errors.Wrap(err, "fetch job lookup")
	}
	return m, nil
}
