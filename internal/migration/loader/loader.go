// Package loader persists transformed records with set-based inserts in
// foreign-key dependency order. Every logical batch runs in a single
// transaction: either the whole multi-table graph commits or none of it
// does, since later tables reference keys generated by earlier ones.
package loader

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oakridge-cabinets/migrate/pkg/composables"
)

// insertChunkSize bounds the rows per statement so parameter counts stay
// within protocol limits on wide tables.
const insertChunkSize = 500

func buildInsert(table string, cols []string, returning string, rows [][]any) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(cols))
	n := 1
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := range cols {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			n++
			args = append(args, row[j])
		}
		sb.WriteByte(')')
	}

	if returning != "" {
		sb.WriteString(" RETURNING ")
		sb.WriteString(returning)
	}
	return sb.String(), args
}

// insertReturningIDs inserts rows in chunks and returns the generated keys
// in input order, the set-based equivalent of inserting one row at a time.
func insertReturningIDs(ctx context.Context, db composables.DB, table string, cols []string, returning string, rows [][]any) ([]int64, error) {
	ids := make([]int64, 0, len(rows))
	for start := 0; start < len(rows); start += insertChunkSize {
		end := min(start+insertChunkSize, len(rows))
		sql, args := buildInsert(table, cols, returning, rows[start:end])

		rs, err := db.Query(ctx, sql, args...)
		if err != nil {
			return nil, err
		}
		for rs.Next() {
			var id int64
			if err := rs.Scan(&id); err != nil {
				rs.Close()
				return nil, err
			}
			ids = append(ids, id)
		}
		rs.Close()
		if err := rs.Err(); err != nil {
			return nil, err
		}
	}
	if len(ids) != len(rows) {
		return nil, errors.Errorf("insert %s: got %d generated keys for %d rows", table, len(ids), len(rows))
	}
	return ids, nil
}

func insertRows(ctx context.Context, db composables.DB, table string, cols []string, rows [][]any) error {
	for start := 0; start < len(rows); start += insertChunkSize {
		end := min(start+insertChunkSize, len(rows))
		sql, args := buildInsert(table, cols, "", rows[start:end])
		if _, err := db.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}
	return nil
}

// mergeKeys writes generated keys back to their original record positions.
func mergeKeys(dst []int64, positions []int, ids []int64) {
	for i, pos := range positions {
		dst[pos] = ids[i]
	}
}

// wrapStoreErr attaches a hint for failure causes with a known remedy.
func wrapStoreErr(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errors.Wrapf(err, "%s (hint: unique constraint hit; the target likely already contains this data from a previous run)", op)
	}
	return errors.Wrap(err, op)
}

func fetchKeys(ctx context.Context, db composables.DB, query string) ([]string, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k *string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		if k != nil {
			keys = append(keys, *k)
		}
	}
	return keys, rows.Err()
}
