// Package engine provides helpers for working with the modernc.org/sqlite
// driver: building DSNs, opening connections and registering the vector SQL
// scalar functions (vec_cosine, vec_l2, vec_angular) used by the corpus store.
package engine
