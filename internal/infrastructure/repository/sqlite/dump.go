package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/amoghv/rollscan/internal/core/domain"
)

// exportTables is the fixed export surface; readers only ever see rows from
// committed transactions.
var exportTables = []string{"rolls", "sections", "voters", "summary_stats"}

// DumpTables reads every table in full for the export path.
func (r *RollRepository) DumpTables(ctx context.Context) ([]domain.TableDump, error) {
	dumps := make([]domain.TableDump, 0, len(exportTables))
	for _, table := range exportTables {
		dump, err := r.dumpTable(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("dump table %s: %w", table, err)
		}
		dumps = append(dumps, dump)
	}
	return dumps, nil
}

func (r *RollRepository) dumpTable(ctx context.Context, table string) (domain.TableDump, error) {
	// table names come from the fixed list above, never from callers
	rows, err := r.db.QueryContext(ctx, "SELECT * FROM "+table+" ORDER BY id")
	if err != nil {
		return domain.TableDump{}, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return domain.TableDump{}, err
	}

	dump := domain.TableDump{Name: table, Columns: columns}
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return domain.TableDump{}, err
		}

		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = v.String
		}
		dump.Rows = append(dump.Rows, row)
	}
	return dump, rows.Err()
}
