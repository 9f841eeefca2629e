package invalid

// Account uses an unknown tag option.
type Account struct {
	ID    int64  `sql:"id,pk"`
	Email string `sql:"email,unique"`
}
