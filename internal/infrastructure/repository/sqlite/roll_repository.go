package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/amoghv/rollscan/internal/core/domain"
)

// InsertRoll commits one roll and all its dependent rows in a single
// transaction. A failure on any row leaves the store exactly as it was; an
// already-committed file name is ErrRollExists. A voter whose id card was
// already inserted is skipped, matching the source data's re-listed entries;
// every other constraint violation aborts the transaction.
func (r *RollRepository) InsertRoll(ctx context.Context, commit domain.RollCommit) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM rolls WHERE file_name = ?`, commit.Roll.FileName).Scan(&existing)
	if err == nil {
		return 0, domain.WrapError(domain.ErrRollExists, "insert roll", fmt.Errorf("file %q has id %d", commit.Roll.FileName, existing))
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("check existing roll: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
INSERT INTO rolls (file_name, assembly_constituency, part_number, publication_date, total_voters_count, pages_total, pages_succeeded, processed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		commit.Roll.FileName, commit.Roll.AssemblyConstituency, commit.Roll.PartNumber,
		commit.Roll.PublicationDate, commit.Roll.TotalVotersCount,
		commit.Roll.PagesTotal, commit.Roll.PagesSucceeded,
		commit.Roll.ProcessedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert roll: %w", err)
	}
	rollID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("roll id: %w", err)
	}

	for _, stat := range commit.Summary {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO summary_stats (roll_id, description, male_count, female_count, other_gender_count, total_count)
VALUES (?, ?, ?, ?, ?, ?)
`, rollID, stat.Description, stat.MaleCount, stat.FemaleCount, stat.OtherGenderCount, stat.TotalCount); err != nil {
			return 0, fmt.Errorf("insert summary row: %w", err)
		}
	}

	for _, section := range commit.Sections {
		res, err := tx.ExecContext(ctx, `INSERT INTO sections (roll_id, section_name) VALUES (?, ?)`, rollID, section.Name)
		if err != nil {
			return 0, fmt.Errorf("insert section %q: %w", section.Name, err)
		}
		sectionID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("section id: %w", err)
		}

		for _, v := range section.Voters {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO voters (section_id, idcard_no, voter_name, relative_name, relation_type, house_no, age, gender, serial_no, box_no_on_page, page_no, status_type, all_text)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(idcard_no) DO NOTHING
`,
				sectionID, v.IDCardNo, v.VoterName, v.RelativeName, v.RelationType,
				v.HouseNo, v.Age, v.Gender, v.SerialNo, v.BoxNoOnPage, v.PageNo,
				v.StatusType, v.AllText,
			); err != nil {
				return 0, fmt.Errorf("insert voter %q: %w", v.IDCardNo, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert tx: %w", err)
	}
	return rollID, nil
}

// DeleteRoll removes one roll by numeric id or file name. Only the parent row
// is deleted here; the schema's cascade takes the dependent rows with it.
// Deleting a missing roll is ErrRollNotFound, so a repeated delete is safe.
func (r *RollRepository) DeleteRoll(ctx context.Context, idOrName string) error {
	id := int64(-1)
	if parsed, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		id = parsed
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM rolls WHERE id = ? OR file_name = ?`, id, idOrName)
	if err != nil {
		return fmt.Errorf("delete roll: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete roll rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrRollNotFound, "delete roll", fmt.Errorf("no roll matches %q", idOrName))
	}
	return nil
}

func (r *RollRepository) ListRolls(ctx context.Context) ([]domain.Roll, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, file_name, assembly_constituency, part_number, publication_date, total_voters_count, pages_total, pages_succeeded, processed_at
FROM rolls
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list rolls: %w", err)
	}
	defer rows.Close()

	var rolls []domain.Roll
	for rows.Next() {
		var roll domain.Roll
		var processedAt string
		if err := rows.Scan(
			&roll.ID, &roll.FileName, &roll.AssemblyConstituency, &roll.PartNumber,
			&roll.PublicationDate, &roll.TotalVotersCount, &roll.PagesTotal,
			&roll.PagesSucceeded, &processedAt,
		); err != nil {
			return nil, fmt.Errorf("scan roll: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, processedAt); err == nil {
			roll.ProcessedAt = ts
		}
		rolls = append(rolls, roll)
	}
	return rolls, rows.Err()
}

func (r *RollRepository) ListSections(ctx context.Context, rollID int64) ([]domain.Section, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, roll_id, section_name FROM sections WHERE roll_id = ? ORDER BY section_name
`, rollID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var sections []domain.Section
	for rows.Next() {
		var s domain.Section
		if err := rows.Scan(&s.ID, &s.RollID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}
