// Package vector holds the embedding helpers shared by the index, the corpus
// store and the SQL functions:
//   - BLOB encoding of float32 embeddings for SQLite columns
//   - cosine, angular and L2 distances
//   - unit normalization
package vector
