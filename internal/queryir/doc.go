// Package queryir enumerates the query shapes the hero persistence layer
// issues.
//
// The database facade speaks literal SQL, but only five statement shapes
// ever reach it. QueryIR names them as a closed set of variants so that the
// simulated backend can answer them with an exhaustive switch instead of an
// ordered list of substring checks, where a general pattern early in the
// list could silently shadow a more specific one later on.
//
// ARCHITECTURE:
//
//	[database facade] → [literal SQL] → [querysql.Recognize] → [Query IR] → [simdb.Dispatch]
//	                                  → [store.Execute] (live database)
//
// querysql.Compile renders a variant back to the canonical SQL text, so the
// facade never hand-writes statements.
//
// SEALED INTERFACE:
//
// Query is sealed with the marker method pattern. Only types in this
// package implement it, which lets consumers switch exhaustively:
//
//	switch q := query.(type) {
//	case CountHero:
//	case SelectHero:
//	case SelectVouchers:
//	case LatestFile:
//	case Delete:
//	}
//
// Both value and pointer forms of each variant are accepted by consumers.
package queryir
