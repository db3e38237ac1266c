package usecase

import (
	"strings"
	"time"

	"github.com/agext/levenshtein"

	"github.com/amoghv/rollscan/internal/core/domain"
)

// matchSection picks the header location line closest to the section name the
// model read off a voter page. The two rarely agree byte for byte, so this is
// a similarity match, not an equality check.
func matchSection(name string, locations []string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	best := ""
	bestScore := 0.0
	for _, loc := range locations {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		score := levenshtein.Match(name, loc, nil)
		if strings.Contains(loc, name) || strings.Contains(name, loc) {
			score = 1
		}
		if score > bestScore {
			best = loc
			bestScore = score
		}
	}
	return best
}

// buildCommit merges the ordered page outcomes of one roll into the rows
// written by a single store transaction.
func buildCommit(fileName string, result domain.RollResult, processedAt time.Time) domain.RollCommit {
	commit := domain.RollCommit{
		Roll: domain.Roll{
			FileName:       fileName,
			PagesTotal:     result.PagesTotal(),
			PagesSucceeded: result.PagesSucceeded(),
			ProcessedAt:    processedAt,
		},
	}

	var locations []string
	for _, page := range result.Pages {
		if page.Err != nil || page.Extraction == nil {
			continue
		}
		switch page.Kind {
		case domain.PageHeader:
			header := page.Extraction.Header
			if header == nil {
				continue
			}
			commit.Roll.AssemblyConstituency = header.AssemblyConstituency
			commit.Roll.PartNumber = header.PartNumber.Int()
			commit.Roll.PublicationDate = normalizeDate(header.PublicationDate)
			locations = dedupeLocations(header.Locations)
		case domain.PageFooter:
			if page.Extraction.Footer == nil {
				continue
			}
			for _, row := range page.Extraction.Footer.Rows {
				commit.Summary = append(commit.Summary, domain.SummaryStat{
					Description:      row.Description,
					MaleCount:        row.MaleCount.Int(),
					FemaleCount:      row.FemaleCount.Int(),
					OtherGenderCount: row.OtherGenderCount.Int(),
					TotalCount:       row.TotalCount.Int(),
				})
			}
			if rows := page.Extraction.Footer.Rows; len(rows) > 0 {
				commit.Roll.TotalVotersCount = rows[len(rows)-1].TotalCount.Int()
			}
		}
	}

	bySection := map[string][]domain.Voter{}
	var sectionOrder []string
	for _, page := range result.Pages {
		if page.Err != nil || page.Extraction == nil || page.Kind != domain.PageVoters {
			continue
		}
		for j, record := range page.Extraction.Voters {
			if strings.TrimSpace(record.IDCardNo) == "" {
				continue
			}

			sectionName := matchSection(record.SectionName, locations)
			if sectionName == "" {
				sectionName = strings.TrimSpace(record.SectionName)
			}
			if sectionName == "" {
				continue
			}

			if _, seen := bySection[sectionName]; !seen {
				sectionOrder = append(sectionOrder, sectionName)
			}
			bySection[sectionName] = append(bySection[sectionName], domain.Voter{
				IDCardNo:     strings.TrimSpace(record.IDCardNo),
				VoterName:    record.VoterName,
				RelativeName: record.RelativeName,
				RelationType: defaultString(record.RelationType, "O"),
				HouseNo:      record.HouseNo,
				Age:          record.Age.Int(),
				Gender:       domain.NormalizeGender(record.Gender),
				SerialNo:     record.SerialNo.Int(),
				BoxNoOnPage:  j + 1,
				PageNo:       page.Index + 1,
				StatusType:   defaultString(record.StatusType, "N"),
				AllText:      record.AllText,
			})
		}
	}

	// header locations without voters still become sections, preserving the
	// printed section list
	for _, loc := range locations {
		if _, seen := bySection[loc]; !seen {
			bySection[loc] = nil
			sectionOrder = append(sectionOrder, loc)
		}
	}
	for _, name := range sectionOrder {
		commit.Sections = append(commit.Sections, domain.SectionCommit{Name: name, Voters: bySection[name]})
	}

	return commit
}

func dedupeLocations(locations []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(locations))
	for _, loc := range locations {
		loc = strings.TrimSpace(loc)
		if loc == "" || seen[loc] {
			continue
		}
		seen[loc] = true
		out = append(out, loc)
	}
	return out
}

// normalizeDate converts the printed dd-mm-yyyy form to ISO; anything else
// passes through untouched.
func normalizeDate(printed string) string {
	printed = strings.TrimSpace(printed)
	if ts, err := time.Parse("02-01-2006", printed); err == nil {
		return ts.Format("2006-01-02")
	}
	return printed
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
