// Package model derives schemas and rows from tagged Go structs.
//
// Exported struct fields opt in with a diff tag:
//
//	type Article struct {
//		ID        string    `diff:"id,STRING,key"`
//		Qty       int       `diff:"quantity,INT"`
//		CreatedAt time.Time `diff:"created_at,STRING,format=2006-01-02 15:04:05"`
//	}
//
// The first tag element renames the field (empty keeps the Go name), the
// second is the type tag, "key" marks a key field and "format=" sets the
// layout used to render time values. Embedded structs are flattened.
//
// Inspect a type once and reuse the returned Model to read many values.
package model
