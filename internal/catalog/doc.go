// Package catalog owns the in-memory title table loaded from the catalog CSV.
//
// Records are created at load time and never deleted. Callers read copies
// through Get, All, and the filter helpers, and mutate only the enrichment
// columns (trailer URL, stored sentiment, score, and critique) through the
// narrowly scoped Store methods. A trailer URL, once set, is never
// overwritten. Flush persists the table back to its CSV under an exclusive
// file lock so concurrent cinesearch processes do not interleave writes.
package catalog
