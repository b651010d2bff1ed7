// Package features derives per-entity training tables from the Olist
// transactional dataset.
//
// Three engines produce independent flat tables: order-level
// (wait times, review flags, basket composition, seller-customer
// distance), product-level (price, demand, review economics) and
// seller-level (logistics delays, tenure, review economics). The
// product and seller engines reuse the order engine's per-order wait
// and review tables as inputs; they do not depend on each other.
//
// All engines operate on an immutable dataset snapshot injected at
// construction. Every call recomputes its table from the snapshot;
// nothing is cached between calls. Rows that cannot be matched during
// a join (no review, no translation, no resolvable coordinates) are
// silently excluded — inner-join semantics, applied consistently,
// not an error condition.
package features
