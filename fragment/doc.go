// Package fragment provides the composable condition and sort values from
// which statements are built.
//
// A [Condition] is an immutable predicate tree over model field names. It
// never carries SQL text built from values: every value is a bound query
// argument. Conditions combine with [And], [Or] and [Not], or through the
// [Condition.And] method:
//
//	cond := fragment.EQ("status", "active").
//	    And(fragment.GTE("age", 18), fragment.In("role", "admin", "owner"))
//
// A [Sort] is an ordered list of (field, direction) terms. The zero Sort
// leaves the order to the database.
//
// Field names are resolved to column names only when a statement is
// rendered, so an unknown field is reported by the operation using it.
package fragment
