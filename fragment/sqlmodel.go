package fragment

import (
	"github.com/syssam/sqlmodel/schema"
)

// SQLModel combines the condition and the sort of a query, as accepted by
// the operations running over a caller-supplied SQL template.
type SQLModel struct {
	Where   Condition
	OrderBy Sort
}

// Model returns an SQLModel with the given condition and sort.
func Model(where Condition, orderBy Sort) SQLModel {
	return SQLModel{Where: where, OrderBy: orderBy}
}

// ByExample returns the conjunction of field equalities built from the
// present fields of an example model. Null fields become IS NULL terms and
// absent fields are ignored.
//
//	fragment.ByExample(Users.Example(&User{Age: schema.Some(30)}))
func ByExample(fields []schema.FieldValue) Condition {
	cs := make([]Condition, 0, len(fields))
	for _, f := range fields {
		switch {
		case f.Value.IsNull():
			cs = append(cs, IsNull(f.Name))
		case f.Value.IsSet():
			cs = append(cs, EQ(f.Name, f.Value.Any()))
		}
	}
	return And(cs...)
}
