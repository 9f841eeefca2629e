package stale

// Item lost its Price field after its code was generated.
type Item struct {
	ID   int64 `sql:"id,pk"`
	Name string
}
