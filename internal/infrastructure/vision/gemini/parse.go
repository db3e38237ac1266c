package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amoghv/rollscan/internal/core/domain"
)

func parsePage(kind domain.PageKind, raw string) (domain.PageExtraction, error) {
	switch kind {
	case domain.PageHeader:
		var header domain.HeaderMetadata
		if err := json.Unmarshal([]byte(extractJSONObject(raw)), &header); err != nil {
			return domain.PageExtraction{}, fmt.Errorf("parse header json: %w", err)
		}
		return domain.PageExtraction{Kind: kind, Header: &header}, nil

	case domain.PageFooter:
		var footer domain.FooterSummary
		if err := json.Unmarshal([]byte(extractJSONObject(raw)), &footer); err != nil {
			return domain.PageExtraction{}, fmt.Errorf("parse footer json: %w", err)
		}
		return domain.PageExtraction{Kind: kind, Footer: &footer}, nil

	default:
		voters, err := parseVoterLines(raw)
		if err != nil {
			return domain.PageExtraction{}, err
		}
		return domain.PageExtraction{Kind: kind, Voters: voters}, nil
	}
}

// parseVoterLines reads the voter page payload as JSON Lines, tolerating a
// whole JSON array as well. Individual bad lines are skipped; a payload that
// yields nothing at all is an error so the caller can retry it.
func parseVoterLines(raw string) ([]domain.VoterRecord, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty voter payload")
	}

	if strings.HasPrefix(cleaned, "[") {
		var voters []domain.VoterRecord
		if err := json.Unmarshal([]byte(cleaned), &voters); err != nil {
			return nil, fmt.Errorf("parse voter array: %w", err)
		}
		return voters, nil
	}

	var voters []domain.VoterRecord
	bad := 0
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var v domain.VoterRecord
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			bad++
			continue
		}
		voters = append(voters, v)
	}
	if len(voters) == 0 {
		return nil, fmt.Errorf("no parseable voter lines (%d rejected)", bad)
	}
	return voters, nil
}

// extractJSONObject cuts the first balanced-looking object out of a response
// that may be wrapped in fences or prose.
func extractJSONObject(raw string) string {
	cleaned := stripFences(raw)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
