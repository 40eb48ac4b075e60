// internal/engine/exprparse.go
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/riskgate/riskgate/internal/types"
)

/*
 * Free-form condition expression parser.
 *
 * Recursive descent over a hand-rolled lexer. The expression form covers the
 * same semantics as the structured form and compiles to the same Node tree:
 *
 *   transaction_amount >= 1000 && (email.disposable == true ||
 *       email.domain in ["tempmail.com", "10minutemail.com"])
 *
 * Grammar:
 *   expr       = or
 *   or         = and { "||" and }
 *   and        = primary { "&&" primary }
 *   primary    = "(" expr ")" | comparison
 *   comparison = path op literal | path "in" list | path
 *   op         = "==" | "!=" | ">=" | ">" | "<=" | "<"
 *   literal    = number | string | "true" | "false"
 *   list       = "[" literal { "," literal } "]"
 *
 * A bare path is shorthand for `path == true`. Precedence: && binds tighter
 * than ||, parentheses override.
 *
 * Callers decide rejection policy: registration of structured conditions is
 * strict, but unparsable expressions degrade to a never-matching rule
 * (ParseExpression's error is recorded, not propagated as a rejection).
 */

// ParseExpression compiles a free-form boolean expression into a condition
// tree. Returns a registration-taxonomy error when the expression cannot be
// parsed; the caller chooses whether to reject or degrade.
func ParseExpression(expr string) (*Node, error) {
	if len(expr) > types.MaxExpressionLength {
		return nil, types.ErrExpressionTooLong
	}
	toks, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}
	node, err := p.parseOr(1)
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, fmt.Errorf("%w: unexpected %q", types.ErrInvalidCondition, p.peek().text)
	}
	return node, nil
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokOp     // == != >= > <= <
	tokAndAnd // &&
	tokOrOr   // ||
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokIn
	tokTrue
	tokFalse
	tokEOF
)

type token struct {
	kind tokenKind
	text string
}

// lex tokenizes an expression. Identifiers allow dots for field paths;
// strings accept single or double quotes.
func lex(expr string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '[':
			toks = append(toks, token{tokLBracket, "["})
			i++
		case c == ']':
			toks = append(toks, token{tokRBracket, "]"})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case c == '&':
			if i+1 >= len(expr) || expr[i+1] != '&' {
				return nil, fmt.Errorf("%w: single '&'", types.ErrInvalidCondition)
			}
			toks = append(toks, token{tokAndAnd, "&&"})
			i += 2
		case c == '|':
			if i+1 >= len(expr) || expr[i+1] != '|' {
				return nil, fmt.Errorf("%w: single '|'", types.ErrInvalidCondition)
			}
			toks = append(toks, token{tokOrOr, "||"})
			i += 2
		case c == '=' || c == '!':
			if i+1 >= len(expr) || expr[i+1] != '=' {
				return nil, fmt.Errorf("%w: incomplete operator %q", types.ErrInvalidCondition, string(c))
			}
			toks = append(toks, token{tokOp, string(c) + "="})
			i += 2
		case c == '>' || c == '<':
			op := string(c)
			i++
			if i < len(expr) && expr[i] == '=' {
				op += "="
				i++
			}
			toks = append(toks, token{tokOp, op})
		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			for j < len(expr) && expr[j] != quote {
				j++
			}
			if j >= len(expr) {
				return nil, fmt.Errorf("%w: unterminated string", types.ErrInvalidCondition)
			}
			toks = append(toks, token{tokString, expr[i+1 : j]})
			i = j + 1
		case c >= '0' && c <= '9' || c == '-':
			j := i + 1
			for j < len(expr) && (expr[j] >= '0' && expr[j] <= '9' || expr[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNumber, expr[i:j]})
			i = j
		case isIdentStart(rune(c)):
			j := i + 1
			for j < len(expr) && isIdentPart(rune(expr[j])) {
				j++
			}
			word := expr[i:j]
			switch word {
			case "in":
				toks = append(toks, token{tokIn, word})
			case "true":
				toks = append(toks, token{tokTrue, word})
			case "false":
				toks = append(toks, token{tokFalse, word})
			default:
				toks = append(toks, token{tokIdent, word})
			}
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected character %q", types.ErrInvalidCondition, string(c))
		}
	}
	return append(toks, token{tokEOF, ""}), nil
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

type exprParser struct {
	toks []token
	pos  int
}

func (p *exprParser) peek() token { return p.toks[p.pos] }

func (p *exprParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *exprParser) eof() bool { return p.peek().kind == tokEOF }

// parseOr handles the lowest-precedence || level.
func (p *exprParser) parseOr(depth int) (*Node, error) {
	if depth > types.MaxConditionDepth {
		return nil, types.ErrConditionTooDeep
	}
	left, err := p.parseAnd(depth)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokOrOr {
		return left, nil
	}
	node := &Node{Kind: NodeOr, Children: []*Node{left}}
	for p.peek().kind == tokOrOr {
		p.next()
		right, err := p.parseAnd(depth)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, right)
	}
	return node, nil
}

func (p *exprParser) parseAnd(depth int) (*Node, error) {
	left, err := p.parsePrimary(depth)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokAndAnd {
		return left, nil
	}
	node := &Node{Kind: NodeAnd, Children: []*Node{left}}
	for p.peek().kind == tokAndAnd {
		p.next()
		right, err := p.parsePrimary(depth)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, right)
	}
	return node, nil
}

func (p *exprParser) parsePrimary(depth int) (*Node, error) {
	if p.peek().kind == tokLParen {
		p.next()
		inner, err := p.parseOr(depth + 1)
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("%w: missing closing parenthesis", types.ErrInvalidCondition)
		}
		p.next()
		return inner, nil
	}
	return p.parseComparison()
}

// parseComparison parses `path op literal`, `path in [...]` or a bare path
// (shorthand for equality against true).
func (p *exprParser) parseComparison() (*Node, error) {
	t := p.next()
	if t.kind != tokIdent {
		return nil, fmt.Errorf("%w: expected field path, got %q", types.ErrInvalidCondition, t.text)
	}
	path, err := parseFieldPath(t.text)
	if err != nil {
		return nil, err
	}

	switch p.peek().kind {
	case tokOp:
		op := exprOperator(p.next().text)
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeLeaf, Path: path, Op: op, Value: lit}, nil

	case tokIn:
		p.next()
		values, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeLeaf, Path: path, Op: OpIn, Values: values}, nil

	default:
		// Bare path: boolean shorthand.
		return &Node{Kind: NodeLeaf, Path: path, Op: OpEq, Value: true}, nil
	}
}

func (p *exprParser) parseLiteral() (any, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number %q", types.ErrInvalidCondition, t.text)
		}
		return f, nil
	case tokString:
		return t.text, nil
	case tokTrue:
		return true, nil
	case tokFalse:
		return false, nil
	default:
		return nil, fmt.Errorf("%w: expected literal, got %q", types.ErrInvalidCondition, t.text)
	}
}

func (p *exprParser) parseList() ([]any, error) {
	if p.next().kind != tokLBracket {
		return nil, fmt.Errorf("%w: \"in\" requires a [...] list", types.ErrInvalidCondition)
	}
	var values []any
	for {
		if p.peek().kind == tokRBracket {
			p.next()
			break
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, lit)
		if len(values) > types.MaxInOperatorValues {
			return nil, types.ErrTooManyInValues
		}
		switch p.peek().kind {
		case tokComma:
			p.next()
		case tokRBracket:
		default:
			return nil, fmt.Errorf("%w: expected ',' or ']' in list", types.ErrInvalidCondition)
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty \"in\" list", types.ErrInvalidCondition)
	}
	return values, nil
}

// exprOperator maps expression comparison tokens to Operator values.
func exprOperator(text string) Operator {
	switch strings.TrimSpace(text) {
	case "==":
		return OpEq
	case "!=":
		return OpNeq
	case ">":
		return OpGt
	case ">=":
		return OpGte
	case "<":
		return OpLt
	case "<=":
		return OpLte
	default:
		return OpEq
	}
}
