// Package ingest implements the catalog ingestion job (§4.5): fetch the
// external catalog JSON, download reference images under bounded
// concurrency, compute descriptors, and upsert the catalog store.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
)

// sourceCard mirrors the upstream catalog JSON schema. Field aliases match
// the source's historical naming (a "version" field instead of subtitle).
type sourceCard struct {
	Name      string       `json:"name"`
	Subtitle  string       `json:"subtitle"`
	Version   string       `json:"version"`
	SetCode   string       `json:"setCode"`
	Number    uint32       `json:"number"`
	Rarity    string       `json:"rarity"`
	Images    sourceImages `json:"images"`
}

type sourceImages struct {
	Full string `json:"full"`
}

type sourceWrapper struct {
	Cards []sourceCard `json:"cards"`
}

// Item is one catalog entry normalized for ingestion: tie-breaks and
// defaults from §4.5 already applied (missing version/subtitle → "",
// missing rarity → "Unknown").
type Item struct {
	ID         string
	Name       string
	Subtitle   string
	SetCode    string
	CardNumber uint32
	Rarity     string
	ImageURL   string
}

// DecodeSource parses the catalog JSON body into normalized Items.
func DecodeSource(r io.Reader) ([]Item, error) {
	var wrapper sourceWrapper
	if err := json.NewDecoder(r).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("ingest: decode catalog source: %w", err)
	}

	items := make([]Item, 0, len(wrapper.Cards))
	for _, c := range wrapper.Cards {
		subtitle := c.Subtitle
		if subtitle == "" {
			subtitle = c.Version
		}
		rarity := c.Rarity
		if rarity == "" {
			rarity = "Unknown"
		}
		items = append(items, Item{
			ID:         fmt.Sprintf("%s-%d", c.SetCode, c.Number),
			Name:       c.Name,
			Subtitle:   subtitle,
			SetCode:    c.SetCode,
			CardNumber: c.Number,
			Rarity:     rarity,
			ImageURL:   c.Images.Full,
		})
	}
	return items, nil
}
