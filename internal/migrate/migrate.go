// Package migrate converts legacy flat JSON exports into the nested
// product/build shape the service consumes. It is used only by the offline
// migrate-from-json tool, never by the running service.
package migrate

import (
	"fmt"
	"time"

	"belt-and-braces/internal/domain"
)

// Legacy exports carry timestamps in one of two layouts.
const (
	legacyLayoutCompact = "20060102T150405Z"
	legacyLayoutISO     = "2006-01-02T15:04:05Z"
)

// Entry is one record of the legacy flat export
type Entry struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	TimeRef   string `json:"time_ref"`
	Summary   string `json:"summary"`
	SourceURL string `json:"source_url"`
	Tag       string `json:"tag"`
	TargetURL string `json:"target_url"`
}

// Build is one converted build record, keyed by its legacy id in the output
type Build struct {
	Description string `json:"description"`
	Source      string `json:"source"`
	Version     string `json:"version"`
	Timestamp   string `json:"timestamp"`
	Target      string `json:"target"`
	SHA512      string `json:"sha512"`
}

// Product is one converted product with its builds in input order
type Product struct {
	Family      string             `json:"family"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Builds      []map[string]Build `json:"builds"`
}

// ReformatTimestamp normalizes a legacy time reference into the canonical
// build timestamp format. Both legacy layouts are accepted.
func ReformatTimestamp(timeRef string) (string, error) {
	t, err := time.Parse(legacyLayoutCompact, timeRef)
	if err != nil {
		t, err = time.Parse(legacyLayoutISO, timeRef)
		if err != nil {
			return "", fmt.Errorf("time_ref %q matches no known layout", timeRef)
		}
	}
	return t.Format(domain.TimestampLayout), nil
}

// Convert groups legacy entries by topic into products. Topics become
// product names; family and description are placeholders to be curated
// after import. Checksums default to the empty-input digest because the
// legacy export never carried any.
func Convert(entries []Entry) (map[string]*Product, error) {
	products := map[string]*Product{}

	for _, entry := range entries {
		product, ok := products[entry.Topic]
		if !ok {
			product = &Product{
				Family:      "ABCD",
				Name:        entry.Topic,
				Description: "Explain me later.",
				Builds:      []map[string]Build{},
			}
			products[entry.Topic] = product
		}

		timestamp, err := ReformatTimestamp(entry.TimeRef)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry.ID, err)
		}

		product.Builds = append(product.Builds, map[string]Build{
			entry.ID: {
				Description: entry.Summary,
				Source:      entry.SourceURL,
				Version:     entry.Tag,
				Timestamp:   timestamp,
				Target:      entry.TargetURL,
				SHA512:      domain.EmptySHA512,
			},
		})
	}

	return products, nil
}
