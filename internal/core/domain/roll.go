package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// PageKind selects the extraction prompt for a page position: the first page
// of a roll carries header metadata, the last carries the summary tables, and
// everything in between is the voter grid.
type PageKind string

const (
	PageHeader PageKind = "header"
	PageVoters PageKind = "voters"
	PageFooter PageKind = "footer"
)

// KindForPage maps a zero-based page index to its extraction kind.
func KindForPage(index, total int) PageKind {
	switch {
	case index == 0:
		return PageHeader
	case index == total-1 && total > 1:
		return PageFooter
	default:
		return PageVoters
	}
}

// PageImage is one rendered page handed to the extraction client.
type PageImage struct {
	Index int
	Kind  PageKind
	PNG   []byte
}

// FlexInt tolerates numeric fields the model returns as either a JSON number
// or a quoted numeric string.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		*n = 0
		return nil
	}
	*n = FlexInt(v)
	return nil
}

func (n FlexInt) Int() int { return int(n) }

// HeaderMetadata is the structured payload of a roll's first page.
type HeaderMetadata struct {
	RollTitle            string   `json:"roll_title"`
	AssemblyConstituency string   `json:"assembly_constituency"`
	PartNumber           FlexInt  `json:"part_number"`
	RevisionYear         string   `json:"revision_year"`
	QualificationDate    string   `json:"qualification_date"`
	PublicationDate      string   `json:"publication_date"`
	Locations            []string `json:"locations"`
	District             string   `json:"district"`
	Taluka               string   `json:"taluka"`
	PinCode              string   `json:"pin_code"`
	PollingStation       string   `json:"polling_station"`
}

// VoterRecord is one extracted voter box from a voter-list page.
type VoterRecord struct {
	SerialNo     FlexInt `json:"serial_no"`
	VoterName    string  `json:"voter_name"`
	RelativeName string  `json:"relative_name"`
	RelationType string  `json:"relation_type"`
	HouseNo      string  `json:"house_no"`
	Age          FlexInt `json:"age"`
	Gender       string  `json:"gender"`
	IDCardNo     string  `json:"idcard_no"`
	StatusType   string  `json:"status_type"`
	SectionName  string  `json:"section_name"`
	BoxNoOnPage  FlexInt `json:"box_no_on_page"`
	AllText      string  `json:"all_text"`

	// PageNo is stamped by the pipeline, never trusted from the model.
	PageNo int `json:"-"`
}

// SummaryRow is one line of the footer summary table.
type SummaryRow struct {
	Description      string  `json:"description"`
	MaleCount        FlexInt `json:"male_count"`
	FemaleCount      FlexInt `json:"female_count"`
	OtherGenderCount FlexInt `json:"other_gender_count"`
	TotalCount       FlexInt `json:"total_count"`
}

// FooterSummary is the structured payload of a roll's last page.
type FooterSummary struct {
	AssemblyConstituency string       `json:"assembly_constituency"`
	PartNumber           FlexInt      `json:"part_number"`
	Rows                 []SummaryRow `json:"rows"`
}

// PageExtraction is the result of one page-level extraction call. Exactly one
// of the payload fields is set, according to Kind.
type PageExtraction struct {
	Kind   PageKind
	Header *HeaderMetadata
	Voters []VoterRecord
	Footer *FooterSummary
}

// PageOutcome is the aggregated fate of one page after fan-out: either an
// extraction or the terminal error that exhausted its retries.
type PageOutcome struct {
	Index      int
	Kind       PageKind
	Extraction *PageExtraction
	Err        error
}

// RollResult aggregates all page outcomes of one roll, ordered by page index.
type RollResult struct {
	FileName string
	Pages    []PageOutcome
}

func (r *RollResult) PagesTotal() int { return len(r.Pages) }

func (r *RollResult) PagesSucceeded() int {
	n := 0
	for _, p := range r.Pages {
		if p.Err == nil {
			n++
		}
	}
	return n
}

// Summary renders the attempted-vs-succeeded page counts for status messages.
func (r *RollResult) Summary() string {
	return strconv.Itoa(r.PagesSucceeded()) + "/" + strconv.Itoa(r.PagesTotal()) + " pages succeeded"
}

// Roll is one committed source PDF.
type Roll struct {
	ID                   int64     `json:"id"`
	FileName             string    `json:"file_name"`
	AssemblyConstituency string    `json:"assembly_constituency"`
	PartNumber           int       `json:"part_number"`
	PublicationDate      string    `json:"publication_date,omitempty"`
	TotalVotersCount     int       `json:"total_voters_count"`
	PagesTotal           int       `json:"pages_total"`
	PagesSucceeded       int       `json:"pages_succeeded"`
	ProcessedAt          time.Time `json:"processed_at"`
}

// Section groups voters under one of the header's location lines.
type Section struct {
	ID     int64  `json:"id"`
	RollID int64  `json:"roll_id"`
	Name   string `json:"name"`
}

// Voter is one persisted voter row.
type Voter struct {
	ID           int64  `json:"id"`
	SectionID    int64  `json:"section_id"`
	IDCardNo     string `json:"idcard_no"`
	VoterName    string `json:"voter_name"`
	RelativeName string `json:"relative_name"`
	RelationType string `json:"relation_type"`
	HouseNo      string `json:"house_no"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	SerialNo     int    `json:"serial_no"`
	BoxNoOnPage  int    `json:"box_no_on_page"`
	PageNo       int    `json:"page_no"`
	StatusType   string `json:"status_type"`
	AllText      string `json:"all_text"`
}

// SummaryStat is one persisted footer summary row.
type SummaryStat struct {
	ID               int64  `json:"id"`
	RollID           int64  `json:"roll_id"`
	Description      string `json:"description"`
	MaleCount        int    `json:"male_count"`
	FemaleCount      int    `json:"female_count"`
	OtherGenderCount int    `json:"other_gender_count"`
	TotalCount       int    `json:"total_count"`
}

// SectionCommit carries one section and its voters into a transactional
// insert; section ids are assigned by the store.
type SectionCommit struct {
	Name   string
	Voters []Voter
}

// RollCommit is everything written for one roll in a single transaction.
type RollCommit struct {
	Roll     Roll
	Sections []SectionCommit
	Summary  []SummaryStat
}

// TableDump is one table's fully committed rows for export.
type TableDump struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// CategoryCount is one aggregate bucket for the dashboard read path.
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Analytics is the read-only aggregate view over committed voter rows.
type Analytics struct {
	Gender    []CategoryCount `json:"gender"`
	AgeGroups []CategoryCount `json:"age_groups"`
}

// NormalizeGender collapses the OCR variants of the Gujarati gender words.
func NormalizeGender(gender string) string {
	g := strings.TrimSpace(gender)
	switch {
	case strings.Contains(g, "પુર"):
		return "પુરુષ"
	case strings.Contains(g, "સ્ત્ર"):
		return "સ્ત્રી"
	}
	return g
}

// compile-time check that FlexInt round-trips through encoding/json.
var _ json.Unmarshaler = (*FlexInt)(nil)
