// Package diff compares two keyed versions of a dataset.
//
// A DiffStore owns a compiled schema and two stores, A and B, that mirror each
// other. Rows are added to either side; queries on one side then report rows
// that are new, missing, changed or unchanged relative to the other side.
//
//	ds, err := diff.New(ctx,
//		[]schema.Field{schema.F("id", schema.TypeInt)},
//		[]schema.Field{schema.F("name", schema.TypeString)},
//	)
//	_ = ds.StoreA().AddRow(ctx, record.Of("id", 1, "name", "Peter"))
//	_ = ds.StoreB().AddRow(ctx, record.Of("id", 1, "name", "Paul"))
//
//	rows := ds.StoreB().ChangedRows(ctx)
//	for _, row := range rows.All() {
//		fmt.Println(row)
//	}
//	if err := rows.Err(); err != nil { ... }
//
// Results are cursors: lazy, restartable sequences that stream from the
// underlying index and report failures through Err.
//
// # Canonical values
//
// Each schema field has a converter that maps raw values onto a canonical
// form. Key fields form the canonical key, key and value fields together form
// the row fingerprint. Rows with equal fingerprints are unchanged even when
// their raw payloads differ, e.g. 59.990 and "59.99" under MONEY. Fields that
// are not declared are kept with the row but never fingerprinted.
//
// # Duplicate keys
//
// Adding a row whose key is already present replaces the stored row in place
// unless a duplicate handler is configured, in which case the stored row
// becomes handler(new, old). Either way the row keeps its original position.
package diff
