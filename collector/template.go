package collector

import (
	"regexp"
	"strings"

	"github.com/syssam/sqlmodel"
	"github.com/syssam/sqlmodel/fragment"
	"github.com/syssam/sqlmodel/schema"
)

var whereRe = regexp.MustCompile(`(?i)\bWHERE\b`)

// checkTemplate validates a caller-supplied SELECT template. The WHERE
// clause of the statement comes from the condition, so a template must not
// carry its own.
func checkTemplate(template string, where fragment.Condition) error {
	if strings.TrimSpace(template) == "" {
		return sqlmodel.NewInvalidArgumentError("template", template, "empty SQL template")
	}
	if !where.IsEmpty() && whereRe.MatchString(template) {
		return sqlmodel.NewInvalidArgumentError("template", template, "template must not contain a WHERE clause when a condition is given")
	}
	return nil
}

// CountBySqlTemplate runs a caller-supplied count statement, such as
// "SELECT COUNT(*) FROM users", filtered by where.
func CountBySqlTemplate[T any](t *schema.Table[T], template string, where fragment.Condition) *Collector[int64] {
	o := op(t, "CountBySqlTemplate", IntentCount)
	o.Where = where
	if err := checkTemplate(template, where); err != nil {
		return failed[int64](o, err)
	}
	s := selectSpec{template: template, where: where}
	return newCollector[int64](o, s.build(t.Name(), resolver(t)), queryInt64)
}

// FindBySqlTemplate runs a caller-supplied SELECT statement filtered and
// ordered by m. The selected columns are mapped back to the model by name.
func FindBySqlTemplate[T any](t *schema.Table[T], template string, m fragment.SQLModel) *Collector[[]*T] {
	o := op(t, "FindBySqlTemplate", IntentFind)
	o.Where = m.Where
	if err := checkTemplate(template, m.Where); err != nil {
		return failed[[]*T](o, err)
	}
	s := selectSpec{template: template, where: m.Where, orderBy: m.OrderBy}
	return newCollector[[]*T](o, s.build(t.Name(), resolver(t)), queryModels(t))
}

// FindFirstBySqlTemplate is like FindBySqlTemplate but loads the first
// record only. The result is nil when nothing matches.
func FindFirstBySqlTemplate[T any](t *schema.Table[T], template string, m fragment.SQLModel) *Collector[*T] {
	o := op(t, "FindFirstBySqlTemplate", IntentFind)
	o.Where = m.Where
	if err := checkTemplate(template, m.Where); err != nil {
		return failed[*T](o, err)
	}
	s := selectSpec{template: template, where: m.Where, orderBy: m.OrderBy, limit: 1}
	return newCollector[*T](o, s.build(t.Name(), resolver(t)), queryModel(t))
}

// FindPageBySqlTemplate is like FindBySqlTemplate but loads one page.
func FindPageBySqlTemplate[T any](t *schema.Table[T], template string, m fragment.SQLModel, pageNum, pageSize int) *Collector[[]*T] {
	o := op(t, "FindPageBySqlTemplate", IntentFind)
	o.Where = m.Where
	if err := checkTemplate(template, m.Where); err != nil {
		return failed[[]*T](o, err)
	}
	limit, offset, err := page(pageNum, pageSize)
	if err != nil {
		return failed[[]*T](o, err)
	}
	s := selectSpec{template: template, where: m.Where, orderBy: m.OrderBy, limit: limit, offset: offset}
	return newCollector[[]*T](o, s.build(t.Name(), resolver(t)), queryModels(t))
}

// RemoveBySqlTemplate always fails with an UnsupportedOperationError.
func RemoveBySqlTemplate[T any](t *schema.Table[T], template string, where fragment.Condition) *Collector[int64] {
	o := op(t, "RemoveBySqlTemplate", IntentRemove)
	o.Where = where
	return failed[int64](o, sqlmodel.NewUnsupportedOperationError("RemoveBySqlTemplate"))
}
