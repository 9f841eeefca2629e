// Package schema maps plain Go structs ("models") to database tables.
//
// A model is described once by an explicit table of field descriptors. The
// descriptors carry typed accessor functions, so reading and writing model
// fields never goes through runtime reflection:
//
//	type User struct {
//	    ID   int64
//	    Name *string
//	    Age  schema.Opt[int]
//	}
//
//	var Users = schema.MustRegister[User]("users",
//	    schema.Field("id", func(u *User) *int64 { return &u.ID }).PrimaryKey(),
//	    schema.Ptr("name", func(u *User) **string { return &u.Name }),
//	    schema.Field("age", func(u *User) *schema.Opt[int] { return &u.Age }),
//	)
//
// # Field Values
//
// Every field value read from a model is a [Value] in one of three states:
//
//   - absent: the caller did not supply it (nil pointer, zero [Opt])
//   - null: explicitly SQL NULL ([NullOpt], [Null])
//   - set: a concrete value
//
// Selective modifications skip absent fields and write NULL for null ones.
// Full modifications write NULL for both.
//
// # Primary Keys
//
// Fields marked with PrimaryKey form the primary-key set of the model. The
// set is resolved once per type by a [KeyResolver]. Operations addressing a
// single record by key require exactly one key field and fail with
// sqlmodel.PrimaryKeyError otherwise.
//
// # Shared Fields
//
// Field groups shared by several models are declared on their own struct
// and lifted with [Embed]. See package mixin for ready-made groups.
package schema
