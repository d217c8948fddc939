// Package predicate translates a restricted subset of comparison and
// conjunction predicates into a SQL fragment appended to a worker's COPY
// query, the way the catalog-join queries elsewhere in this module build
// up WHERE clauses by hand rather than through a query builder. Anything
// outside the supported node set fails closed with pgerr.UnsupportedPredicate
// so the caller can fall back to an unfiltered scan.
package predicate

import (
	"strings"

	"github.com/danthegoodman1/pgscan/pgerr"
)

// Op is a supported comparison operator.
type Op string

const (
	Eq  Op = "="
	Neq Op = "!="
	Lt  Op = "<"
	Gt  Op = ">"
	Lte Op = "<="
	Gte Op = ">="
)

var validOps = map[Op]bool{Eq: true, Neq: true, Lt: true, Gt: true, Lte: true, Gte: true}

// Node is a predicate AST node. Exactly one of the typed fields is
// meaningful, selected by Kind.
type Node struct {
	Kind NodeKind

	// IsNull / IsNotNull
	Column string

	// Compare
	Op    Op
	Value string

	// And / Or
	Left  *Node
	Right *Node
}

type NodeKind string

const (
	KindIsNull    NodeKind = "is_null"
	KindIsNotNull NodeKind = "is_not_null"
	KindCompare   NodeKind = "compare"
	KindAnd       NodeKind = "and"
	KindOr        NodeKind = "or"
)

func IsNull(column string) *Node    { return &Node{Kind: KindIsNull, Column: column} }
func IsNotNull(column string) *Node { return &Node{Kind: KindIsNotNull, Column: column} }
func Compare(column string, op Op, value string) *Node {
	return &Node{Kind: KindCompare, Column: column, Op: op, Value: value}
}
func And(left, right *Node) *Node { return &Node{Kind: KindAnd, Left: left, Right: right} }
func Or(left, right *Node) *Node  { return &Node{Kind: KindOr, Left: left, Right: right} }

// Render produces the " AND <expr>" fragment for the given predicate tree,
// quoting the literal constant of every Compare node and escaping embedded
// single quotes and backslashes. It returns pgerr.UnsupportedPredicate for
// any node this projector does not know how to translate.
func Render(root *Node) (string, error) {
	if root == nil {
		return "", nil
	}
	expr, err := render(root)
	if err != nil {
		return "", err
	}
	return " AND " + expr, nil
}

func render(n *Node) (string, error) {
	if n == nil {
		return "", pgerr.New(pgerr.UnsupportedPredicate, "nil predicate node")
	}
	switch n.Kind {
	case KindIsNull:
		return quoteIdent(n.Column) + " IS NULL", nil
	case KindIsNotNull:
		return quoteIdent(n.Column) + " IS NOT NULL", nil
	case KindCompare:
		if !validOps[n.Op] {
			return "", pgerr.Newf(pgerr.UnsupportedPredicate, "unsupported operator %q", n.Op)
		}
		return quoteIdent(n.Column) + " " + string(n.Op) + " " + quoteLiteral(n.Value), nil
	case KindAnd, KindOr:
		left, err := render(n.Left)
		if err != nil {
			return "", err
		}
		right, err := render(n.Right)
		if err != nil {
			return "", err
		}
		joiner := " AND "
		if n.Kind == KindOr {
			joiner = " OR "
		}
		return "(" + left + joiner + right + ")", nil
	default:
		return "", pgerr.Newf(pgerr.UnsupportedPredicate, "unsupported predicate node kind %q", n.Kind)
	}
}

// quoteLiteral renders a constant as a single-quoted SQL literal, escaping
// embedded backslashes before quotes so the result cannot break out of the
// literal even if the server has standard_conforming_strings off.
func quoteLiteral(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `''`)
	return "'" + v + "'"
}

// quoteIdent double-quotes a column identifier, escaping embedded double
// quotes by doubling them, matching the identifier quoting used when
// building the worker's projection list.
func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
