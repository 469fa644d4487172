// Package bruteforce provides a simple vector index that answers kNN queries
// by scanning all vectors and scoring via cosine similarity. It supports a
// compact binary format for persistence in the vector_storage table.
package bruteforce

