package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/amoghv/rollscan/internal/core/domain"
)

func newTestRepo(t *testing.T) *RollRepository {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "rollscan.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRollRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return repo
}

func sampleCommit(fileName string) domain.RollCommit {
	return domain.RollCommit{
		Roll: domain.Roll{
			FileName:             fileName,
			AssemblyConstituency: "160-Surat North",
			PartNumber:           86,
			PublicationDate:      "2025-04-10",
			TotalVotersCount:     1043,
			PagesTotal:           3,
			PagesSucceeded:       3,
			ProcessedAt:          time.Now().UTC(),
		},
		Sections: []domain.SectionCommit{
			{
				Name: "Sector 1",
				Voters: []domain.Voter{
					{IDCardNo: "SRV001", VoterName: "A", Age: 47, Gender: "પુરુષ", PageNo: 2},
					{IDCardNo: "SRV002", VoterName: "B", Age: 33, Gender: "સ્ત્રી", PageNo: 2},
				},
			},
			{
				Name: "Sector 2",
				Voters: []domain.Voter{
					{IDCardNo: "SRV003", VoterName: "C", Age: 64, Gender: "પુરુષ", PageNo: 2},
				},
			},
		},
		Summary: []domain.SummaryStat{
			{Description: "original roll", MaleCount: 584, FemaleCount: 459, TotalCount: 1043},
		},
	}
}

func (r *RollRepository) countRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	// test helper; table names are literals below
	if err := r.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestInsertRollCommitsAllRows(t *testing.T) {
	repo := newTestRepo(t)

	rollID, err := repo.InsertRoll(context.Background(), sampleCommit("part-86.pdf"))
	if err != nil {
		t.Fatalf("InsertRoll() error = %v", err)
	}
	if rollID == 0 {
		t.Fatalf("expected nonzero roll id")
	}
	if got := repo.countRows(t, "sections"); got != 2 {
		t.Fatalf("expected 2 sections, got %d", got)
	}
	if got := repo.countRows(t, "voters"); got != 3 {
		t.Fatalf("expected 3 voters, got %d", got)
	}
	if got := repo.countRows(t, "summary_stats"); got != 1 {
		t.Fatalf("expected 1 summary row, got %d", got)
	}
}

func TestInsertRollDuplicateFileNameIsTyped(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.InsertRoll(context.Background(), sampleCommit("part-86.pdf")); err != nil {
		t.Fatalf("first InsertRoll() error = %v", err)
	}
	_, err := repo.InsertRoll(context.Background(), sampleCommit("part-86.pdf"))
	if !domain.IsKind(err, domain.ErrRollExists) {
		t.Fatalf("expected ErrRollExists, got %v", err)
	}
	if got := repo.countRows(t, "rolls"); got != 1 {
		t.Fatalf("duplicate insert changed store: %d rolls", got)
	}
}

func TestInsertRollFailureMidWriteLeavesNothing(t *testing.T) {
	repo := newTestRepo(t)

	commit := sampleCommit("part-87.pdf")
	// negative page_no violates the voters CHECK constraint on the third row
	commit.Sections[1].Voters[0].PageNo = -1

	if _, err := repo.InsertRoll(context.Background(), commit); err == nil {
		t.Fatalf("expected constraint error")
	}
	for _, table := range exportTables {
		if got := repo.countRows(t, table); got != 0 {
			t.Fatalf("expected empty %s after failed insert, got %d rows", table, got)
		}
	}
}

func TestInsertRollSkipsOnlyDuplicateIDCards(t *testing.T) {
	repo := newTestRepo(t)

	// the same voter re-listed under a second section must not abort the
	// commit; any other constraint violation still must (see the mid-write
	// failure test above)
	commit := sampleCommit("part-88.pdf")
	commit.Sections[1].Voters = append(commit.Sections[1].Voters,
		domain.Voter{IDCardNo: "SRV001", VoterName: "A re-listed", Age: 47, PageNo: 3},
	)

	if _, err := repo.InsertRoll(context.Background(), commit); err != nil {
		t.Fatalf("InsertRoll() error = %v", err)
	}
	if got := repo.countRows(t, "voters"); got != 3 {
		t.Fatalf("expected duplicate id card skipped, got %d voters", got)
	}
}

func TestDeleteRollCascadesAndIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.InsertRoll(ctx, sampleCommit("part-86.pdf")); err != nil {
		t.Fatalf("InsertRoll() error = %v", err)
	}
	if err := repo.DeleteRoll(ctx, "part-86.pdf"); err != nil {
		t.Fatalf("DeleteRoll() error = %v", err)
	}
	for _, table := range exportTables {
		if got := repo.countRows(t, table); got != 0 {
			t.Fatalf("expected cascade to empty %s, got %d rows", table, got)
		}
	}

	err := repo.DeleteRoll(ctx, "part-86.pdf")
	if !domain.IsKind(err, domain.ErrRollNotFound) {
		t.Fatalf("second delete: expected ErrRollNotFound, got %v", err)
	}
}

func TestDeleteRollByNumericID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rollID, err := repo.InsertRoll(ctx, sampleCommit("part-86.pdf"))
	if err != nil {
		t.Fatalf("InsertRoll() error = %v", err)
	}
	if err := repo.DeleteRoll(ctx, "1"); err != nil {
		t.Fatalf("DeleteRoll(%d) error = %v", rollID, err)
	}
}

func TestListRollsAndSections(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rollID, err := repo.InsertRoll(ctx, sampleCommit("part-86.pdf"))
	if err != nil {
		t.Fatalf("InsertRoll() error = %v", err)
	}

	rolls, err := repo.ListRolls(ctx)
	if err != nil {
		t.Fatalf("ListRolls() error = %v", err)
	}
	if len(rolls) != 1 || rolls[0].FileName != "part-86.pdf" || rolls[0].PagesSucceeded != 3 {
		t.Fatalf("unexpected rolls: %+v", rolls)
	}

	sections, err := repo.ListSections(ctx, rollID)
	if err != nil {
		t.Fatalf("ListSections() error = %v", err)
	}
	if len(sections) != 2 || sections[0].Name != "Sector 1" {
		t.Fatalf("unexpected sections: %+v", sections)
	}
}

func TestRollAnalyticsAggregates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rollID, err := repo.InsertRoll(ctx, sampleCommit("part-86.pdf"))
	if err != nil {
		t.Fatalf("InsertRoll() error = %v", err)
	}

	analytics, err := repo.RollAnalytics(ctx, rollID)
	if err != nil {
		t.Fatalf("RollAnalytics() error = %v", err)
	}
	genders := map[string]int{}
	for _, c := range analytics.Gender {
		genders[c.Label] = c.Count
	}
	if genders["પુરુષ"] != 2 || genders["સ્ત્રી"] != 1 {
		t.Fatalf("unexpected gender counts: %+v", analytics.Gender)
	}
	buckets := map[string]int{}
	for _, c := range analytics.AgeGroups {
		buckets[c.Label] = c.Count
	}
	if buckets["40-49"] != 1 || buckets["30-39"] != 1 || buckets["60+"] != 1 {
		t.Fatalf("unexpected age buckets: %+v", analytics.AgeGroups)
	}
}

func TestDumpTablesReflectsCommittedRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.InsertRoll(ctx, sampleCommit("part-86.pdf")); err != nil {
		t.Fatalf("InsertRoll() error = %v", err)
	}

	dumps, err := repo.DumpTables(ctx)
	if err != nil {
		t.Fatalf("DumpTables() error = %v", err)
	}
	if len(dumps) != 4 {
		t.Fatalf("expected 4 tables, got %d", len(dumps))
	}
	byName := map[string]int{}
	for _, d := range dumps {
		byName[d.Name] = len(d.Rows)
	}
	if byName["rolls"] != 1 || byName["voters"] != 3 {
		t.Fatalf("unexpected dump sizes: %+v", byName)
	}
}
