// Package subword trains and serves skip-gram word vectors enriched with
// character n-grams, so that unseen words sharing fragments with the training
// vocabulary still receive a vector.
package subword
