// Package corpus holds the retrievable items: the id-to-item map consulted
// after an index hit, and the SQLite topic store sampled by the classifier
// fallback. Both are written once by training and opened read-only at
// serving time.
package corpus

// Sample is a raw training record.
type Sample struct {
	Topic string `json:"topic" db:"topic"`
	Text  string `json:"text" db:"text"`
}

// Item is a retrievable corpus entry. ID is dense and 0-based, assigned in
// input order at build time.
type Item struct {
	ID     int      `json:"id"`
	Topic  string   `json:"topic"`
	Text   string   `json:"text"`
	Tokens []string `json:"tokens,omitempty"`
}
