// Package normalize turns raw query or corpus text into the lemma sequence
// consumed by the IDF table, the embedding builder and the topic classifier.
//
// The pipeline is fixed: strip punctuation, split on whitespace, lowercase,
// lemmatize, then drop stop-words and tokens without letters or digits. The
// same Normalizer must be used at training and at serving time.
package normalize
