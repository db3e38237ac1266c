package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/amoghv/rollscan/internal/core/domain"
)

const ageBucketExpr = `
CASE
	WHEN age BETWEEN 18 AND 29 THEN '18-29'
	WHEN age BETWEEN 30 AND 39 THEN '30-39'
	WHEN age BETWEEN 40 AND 49 THEN '40-49'
	WHEN age BETWEEN 50 AND 59 THEN '50-59'
	ELSE '60+'
END`

// RollAnalytics aggregates committed voter rows for one roll: gender counts
// and age-bucket counts, read-only.
func (r *RollRepository) RollAnalytics(ctx context.Context, rollID int64) (domain.Analytics, error) {
	gender, err := r.categoryCounts(ctx, `
SELECT v.gender, COUNT(*)
FROM voters v JOIN sections s ON v.section_id = s.id
WHERE s.roll_id = ?
GROUP BY v.gender
`, rollID)
	if err != nil {
		return domain.Analytics{}, fmt.Errorf("roll gender counts: %w", err)
	}

	ages, err := r.categoryCounts(ctx, `
SELECT `+ageBucketExpr+` AS age_group, COUNT(*)
FROM voters v JOIN sections s ON v.section_id = s.id
WHERE s.roll_id = ? AND v.age > 0
GROUP BY age_group
ORDER BY age_group
`, rollID)
	if err != nil {
		return domain.Analytics{}, fmt.Errorf("roll age buckets: %w", err)
	}

	return domain.Analytics{Gender: gender, AgeGroups: ages}, nil
}

// SectionAnalytics is RollAnalytics scoped to one section.
func (r *RollRepository) SectionAnalytics(ctx context.Context, sectionID int64) (domain.Analytics, error) {
	gender, err := r.categoryCounts(ctx, `
SELECT gender, COUNT(*) FROM voters WHERE section_id = ? GROUP BY gender
`, sectionID)
	if err != nil {
		return domain.Analytics{}, fmt.Errorf("section gender counts: %w", err)
	}

	ages, err := r.categoryCounts(ctx, `
SELECT `+ageBucketExpr+` AS age_group, COUNT(*)
FROM voters
WHERE section_id = ? AND age > 0
GROUP BY age_group
ORDER BY age_group
`, sectionID)
	if err != nil {
		return domain.Analytics{}, fmt.Errorf("section age buckets: %w", err)
	}

	return domain.Analytics{Gender: gender, AgeGroups: ages}, nil
}

func (r *RollRepository) categoryCounts(ctx context.Context, query string, arg any) ([]domain.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []domain.CategoryCount{}
	for rows.Next() {
		var c domain.CategoryCount
		var label sql.NullString
		if err := rows.Scan(&label, &c.Count); err != nil {
			return nil, err
		}
		c.Label = label.String
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
