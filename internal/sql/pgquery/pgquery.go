//go:build cgo

// Package pgquery adapts the PostgreSQL grammar from pg_query_go to the
// converter's INSERT tree.
package pgquery

import (
	stderrors "errors"
	"reflect"
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	pgparser "github.com/pganalyze/pg_query_go/v6/parser"

	"github.com/insinfo/insert-to-copy/internal/errors"
	"github.com/insinfo/insert-to-copy/internal/sql/parser"
)

// Available reports whether this build links the PostgreSQL parser.
const Available = true

// Parser parses INSERT statements with the real PostgreSQL grammar.
type Parser struct{}

// Name identifies the parser in logs.
func (Parser) Name() string { return "pgquery" }

// ParseInsert parses sql, which must hold exactly one INSERT statement.
func (Parser) ParseInsert(sql string) (*parser.InsertStmt, error) {
	tree, err := pg_query.Parse(sql)
	if err != nil {
		return nil, parseError(err)
	}

	var stmts []*pg_query.RawStmt
	for _, raw := range tree.GetStmts() {
		if raw.GetStmt() != nil {
			stmts = append(stmts, raw)
		}
	}
	if len(stmts) != 1 {
		return nil, errors.ParseFailure("expected a single INSERT statement", 0).
			WithDetailf("Found %d statements.", len(stmts))
	}

	ins := stmts[0].GetStmt().GetInsertStmt()
	if ins == nil {
		return nil, errors.ParseFailure("statement is not an INSERT", 0).
			WithDetailf("Found %s.", nodeType(stmts[0].GetStmt().GetNode()))
	}
	return convertInsert(ins), nil
}

func parseError(err error) error {
	var pe *pgparser.Error
	if stderrors.As(err, &pe) {
		return errors.ParseFailure(pe.Message, pe.Cursorpos).WithCause(err)
	}
	return errors.ParseFailure(err.Error(), 0).WithCause(err)
}

func convertInsert(ins *pg_query.InsertStmt) *parser.InsertStmt {
	stmt := &parser.InsertStmt{}

	if rel := ins.GetRelation(); rel != nil {
		stmt.Schema = rel.GetSchemaname()
		stmt.TableName = rel.GetRelname()
		stmt.Alias = rel.GetAlias().GetAliasname()
	}

	for _, col := range ins.GetCols() {
		if name := col.GetResTarget().GetName(); name != "" {
			stmt.Columns = append(stmt.Columns, name)
		}
	}

	switch ins.GetOverride() {
	case pg_query.OverridingKind_OVERRIDING_SYSTEM_VALUE:
		stmt.Overriding = "SYSTEM"
	case pg_query.OverridingKind_OVERRIDING_USER_VALUE:
		stmt.Overriding = "USER"
	}

	stmt.OnConflict = ins.GetOnConflictClause() != nil
	stmt.Returning = len(ins.GetReturningList()) > 0
	stmt.With = ins.GetWithClause() != nil

	src := ins.GetSelectStmt()
	if src == nil {
		stmt.DefaultValues = true
		return stmt
	}

	sel := src.GetSelectStmt()
	if sel == nil || len(sel.GetValuesLists()) == 0 {
		stmt.Query = deparse(src)
		return stmt
	}

	for _, vl := range sel.GetValuesLists() {
		items := vl.GetList().GetItems()
		row := make([]parser.Expression, 0, len(items))
		for _, item := range items {
			row = append(row, convertValue(item))
		}
		stmt.Values = append(stmt.Values, row)
	}
	return stmt
}

// convertValue maps a VALUES item to a literal. Casts keep their inner
// constant and a unary plus on a number is dropped; everything else is
// Unsupported.
func convertValue(n *pg_query.Node) parser.Expression {
	switch v := n.GetNode().(type) {
	case *pg_query.Node_AConst:
		return convertConst(v.AConst)
	case *pg_query.Node_TypeCast:
		if lit, ok := convertValue(v.TypeCast.GetArg()).(*parser.Literal); ok {
			return lit
		}
	case *pg_query.Node_AExpr:
		e := v.AExpr
		if e.GetKind() == pg_query.A_Expr_Kind_AEXPR_OP && e.GetLexpr() == nil && len(e.GetName()) == 1 &&
			e.GetName()[0].GetString_().GetSval() == "+" {
			if lit, ok := convertValue(e.GetRexpr()).(*parser.Literal); ok &&
				(lit.Kind == parser.LiteralInteger || lit.Kind == parser.LiteralFloat) {
				return lit
			}
		}
	}
	return &parser.Unsupported{Text: nodeType(n.GetNode())}
}

func convertConst(c *pg_query.A_Const) parser.Expression {
	if c.GetIsnull() {
		return parser.NewNull()
	}
	switch v := c.GetVal().(type) {
	case *pg_query.A_Const_Ival:
		return parser.NewInteger(strconv.FormatInt(int64(v.Ival.GetIval()), 10))
	case *pg_query.A_Const_Fval:
		return parser.NewFloat(v.Fval.GetFval())
	case *pg_query.A_Const_Sval:
		return parser.NewString(v.Sval.GetSval())
	case *pg_query.A_Const_Boolval:
		return parser.NewBoolean(v.Boolval.GetBoolval())
	case *pg_query.A_Const_Bsval:
		return &parser.Unsupported{Text: v.Bsval.GetBsval()}
	}
	return &parser.Unsupported{Text: "A_Const"}
}

func deparse(n *pg_query.Node) string {
	out, err := pg_query.Deparse(&pg_query.ParseResult{
		Stmts: []*pg_query.RawStmt{{Stmt: n}},
	})
	if err != nil {
		return nodeType(n.GetNode())
	}
	return out
}

func nodeType(node any) string {
	if node == nil {
		return "nil"
	}
	return strings.TrimPrefix(strings.TrimPrefix(reflect.TypeOf(node).String(), "*pg_query."), "Node_")
}
