// Package catalog owns durable persistence of CardRecords and the
// SystemStats counter store: the cards table keyed by id, and the
// system_stats table the scan counter lives in.
package catalog

// CardRecord is a single catalog entry: reference metadata plus the two
// descriptor fingerprints computed from its reference image.
type CardRecord struct {
	ID         string
	Name       string
	Subtitle   string
	SetCode    string
	CardNumber uint32
	Rarity     string

	// PromoGrouping is optional and, once set on create, is never
	// updated by a later conflicting upsert (see store.go Upsert).
	PromoGrouping *string

	ImageURL string

	// PHash is the 36-character lowercase hex rendering of the 18-byte
	// perceptual hash (see internal/phash). Auxiliary; not queried by
	// the match engine.
	PHash string

	// AkazeData is the opaque, concatenated 61-byte-row descriptor
	// blob (see internal/descriptor). Its length must be a multiple of
	// 61; it may be empty if extraction found no features.
	AkazeData []byte
}

// IsComplete reports whether the record carries both fingerprints needed
// to be indexed and matched against.
func (c CardRecord) IsComplete() bool {
	return c.PHash != "" && len(c.AkazeData) > 0
}
