// Package sqlquery lowers the search condition AST into squirrel builder
// calls and executes the resulting queries over PostgreSQL.
package sqlquery

import (
	"fmt"
	"strings"

	"searchq/internal/schema"
	"searchq/internal/search"

	"github.com/Masterminds/squirrel"
)

// Query implements search.Queryable over one registered entity. Operations
// accumulate into copies; the SQL is built on demand.
type Query struct {
	entity     *schema.Entity
	conditions []search.Condition
	orders     []search.OrderKey
	skip       int
	take       int
	hasSkip    bool
	hasTake    bool
}

// For starts an empty query over an entity.
func For(entity *schema.Entity) *Query {
	return &Query{entity: entity}
}

func (q *Query) clone() *Query {
	c := *q
	c.conditions = append([]search.Condition{}, q.conditions...)
	c.orders = append([]search.OrderKey{}, q.orders...)
	return &c
}

func (q *Query) Where(cond search.Condition) search.Queryable {
	c := q.clone()
	c.conditions = append(c.conditions, cond)
	return c
}

func (q *Query) Order(keys []search.OrderKey) search.Queryable {
	c := q.clone()
	c.orders = append([]search.OrderKey{}, keys...)
	return c
}

func (q *Query) Skip(n int) search.Queryable {
	c := q.clone()
	c.skip = n
	c.hasSkip = true
	return c
}

func (q *Query) Take(n int) search.Queryable {
	c := q.clone()
	c.take = n
	c.hasTake = true
	return c
}

// SelectSQL builds the row-fetching statement: filters, joins, ordering
// and paging.
func (q *Query) SelectSQL() (string, []any, error) {
	joins := q.collectJoins()

	sb := squirrel.SelectBuilder{}.PlaceholderFormat(squirrel.Dollar).
		Columns("main.*").
		From(fmt.Sprintf("%s AS main", q.entity.Table))
	sb = applyJoins(sb, joins)

	if where := q.whereSqlizer(joins); where != nil {
		sb = sb.Where(where)
	}
	for _, key := range q.orders {
		expr := columnExpr(q.entity, joins, key.Path)
		if expr == "" {
			continue
		}
		if key.Descending {
			expr += " DESC"
		}
		sb = sb.OrderBy(expr)
	}
	if q.hasSkip && q.skip > 0 {
		sb = sb.Offset(uint64(q.skip))
	}
	if q.hasTake {
		sb = sb.Limit(uint64(q.take))
	}
	return sb.ToSql()
}

// CountSQL builds the counting statement: same joins and filters, no
// ordering or paging.
func (q *Query) CountSQL() (string, []any, error) {
	joins := q.collectJoins()

	sb := squirrel.SelectBuilder{}.PlaceholderFormat(squirrel.Dollar).
		From(fmt.Sprintf("%s AS main", q.entity.Table))
	sb = applyJoins(sb, joins)
	if len(joins.specs) > 0 {
		sb = sb.Column("COUNT(DISTINCT main.id)")
	} else {
		sb = sb.Column("COUNT(*)")
	}
	if where := q.whereSqlizer(joins); where != nil {
		sb = sb.Where(where)
	}
	return sb.ToSql()
}

func (q *Query) whereSqlizer(joins *joinSet) squirrel.Sqlizer {
	var exprs []squirrel.Sqlizer
	for _, cond := range q.conditions {
		if expr := lowerCondition(q.entity, joins, cond); expr != nil {
			exprs = append(exprs, expr)
		}
	}
	if len(exprs) == 0 {
		return nil
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return squirrel.And(exprs)
}

// joinSet assigns one stable LEFT JOIN alias per relation path prefix.
type joinSet struct {
	aliases map[string]string
	specs   []joinSpec
}

type joinSpec struct {
	table string
	alias string
	on    string
}

// collectJoins walks every condition and order path and registers the
// joins their relation prefixes need, in first-use order.
func (q *Query) collectJoins() *joinSet {
	js := &joinSet{aliases: map[string]string{}}
	for _, cond := range q.conditions {
		walkPaths(cond, func(path string) { js.register(q.entity, path) })
	}
	for _, key := range q.orders {
		js.register(q.entity, key.Path)
	}
	return js
}

func walkPaths(cond search.Condition, visit func(path string)) {
	switch c := cond.(type) {
	case search.Leaf:
		visit(c.Path)
	case search.Or:
		for _, branch := range c.Conditions {
			walkPaths(branch, visit)
		}
	}
}

// register adds joins for every relation prefix of a dotted path.
func (js *joinSet) register(root *schema.Entity, path string) {
	segs := strings.Split(path, ".")
	if len(segs) < 2 {
		return
	}
	cur := root
	parentAlias := "main"
	prefix := ""
	for _, seg := range segs[:len(segs)-1] {
		rname, rel := cur.Relation(seg)
		if rel == nil || rel.Ref() == nil {
			return
		}
		if prefix == "" {
			prefix = rname
		} else {
			prefix = prefix + "." + rname
		}
		alias, ok := js.aliases[prefix]
		if !ok {
			alias = fmt.Sprintf("t%d", len(js.specs)+1)
			js.aliases[prefix] = alias
			js.specs = append(js.specs, joinSpec{
				table: rel.Ref().Table,
				alias: alias,
				on:    fmt.Sprintf("%s.%s = %s.%s", alias, rel.PrimaryKey(), parentAlias, rel.FK),
			})
		}
		parentAlias = alias
		cur = rel.Ref()
	}
}

func applyJoins(sb squirrel.SelectBuilder, joins *joinSet) squirrel.SelectBuilder {
	for _, j := range joins.specs {
		sb = sb.LeftJoin(fmt.Sprintf("%s AS %s ON %s", j.table, j.alias, j.on))
	}
	return sb
}

// columnExpr resolves a canonical path to its SQL column reference.
func columnExpr(root *schema.Entity, joins *joinSet, path string) string {
	segs := strings.Split(path, ".")
	field := root.Lookup(path)
	if field == nil {
		return ""
	}
	if len(segs) == 1 {
		return "main." + field.Column
	}
	prefix := canonicalPrefix(root, segs[:len(segs)-1])
	alias, ok := joins.aliases[prefix]
	if !ok {
		return ""
	}
	return alias + "." + field.Column
}

func canonicalPrefix(root *schema.Entity, segs []string) string {
	cur := root
	out := make([]string, 0, len(segs))
	for _, seg := range segs {
		rname, rel := cur.Relation(seg)
		if rel == nil {
			return strings.Join(segs, ".")
		}
		out = append(out, rname)
		cur = rel.Ref()
	}
	return strings.Join(out, ".")
}
