package navtree

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/foomo/navserver/nav"
	"github.com/pkg/errors"
)

// ParseJS reads generated navigation scripts of the form
//
//	var tutorials =
//	[
//	  [ "Basic Operations", "intro-01.html", [ ... ] ],
//	];
//
// Every var statement yields one tree named after the variable.
func ParseJS(r io.Reader) ([]*nav.Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read navigation script")
	}
	p := &jsParser{src: string(src)}
	var trees []*nav.Tree
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		tree, err := p.statement()
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	if len(trees) == 0 {
		return nil, errors.New("navigation script does not declare a tree")
	}
	return trees, nil
}

type jsParser struct {
	src string
	pos int
}

func (p *jsParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *jsParser) errorf(format string, args ...interface{}) error {
	line := 1 + strings.Count(p.src[:p.pos], "\n")
	col := p.pos - strings.LastIndex(p.src[:p.pos], "\n")
	return errors.Errorf("navigation script %d:%d: "+format, append([]interface{}{line, col}, args...)...)
}

func (p *jsParser) skipSpace() {
	for !p.eof() {
		switch {
		case unicode.IsSpace(rune(p.src[p.pos])):
			p.pos++
		case strings.HasPrefix(p.src[p.pos:], "//"):
			if i := strings.IndexByte(p.src[p.pos:], '\n'); i >= 0 {
				p.pos += i + 1
			} else {
				p.pos = len(p.src)
			}
		case strings.HasPrefix(p.src[p.pos:], "/*"):
			if i := strings.Index(p.src[p.pos+2:], "*/"); i >= 0 {
				p.pos += i + 4
			} else {
				p.pos = len(p.src)
			}
		default:
			return
		}
	}
}

func (p *jsParser) expect(b byte) error {
	p.skipSpace()
	if p.eof() || p.src[p.pos] != b {
		return p.errorf("expected %q", b)
	}
	p.pos++
	return nil
}

func (p *jsParser) ident() string {
	p.skipSpace()
	start := p.pos
	for !p.eof() {
		c := rune(p.src[p.pos])
		if c != '_' && c != '$' && !unicode.IsLetter(c) && !(p.pos > start && unicode.IsDigit(c)) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *jsParser) statement() (*nav.Tree, error) {
	switch keyword := p.ident(); keyword {
	case "var", "let", "const":
	case "":
		return nil, p.errorf("expected var declaration")
	default:
		return nil, p.errorf("unexpected %q", keyword)
	}
	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected variable name")
	}
	if err := p.expect('='); err != nil {
		return nil, err
	}
	value, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() && p.src[p.pos] == ';' {
		p.pos++
	}
	nodes, err := nodesFromValue(value)
	if err != nil {
		return nil, errors.Wrapf(err, "tree %q", name)
	}
	return nav.NewTree(name, nodes...), nil
}

func (p *jsParser) value() (interface{}, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("unexpected end of script")
	}
	switch c := p.src[p.pos]; {
	case c == '[':
		return p.array()
	case c == '"' || c == '\'':
		return p.quoted()
	case strings.HasPrefix(p.src[p.pos:], "null"):
		p.pos += len("null")
		return nil, nil
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}

func (p *jsParser) array() ([]interface{}, error) {
	p.pos++ // [
	values := []interface{}{}
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("unterminated array")
		}
		if p.src[p.pos] == ']' {
			p.pos++
			return values, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		p.skipSpace()
		if !p.eof() && p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		return values, nil
	}
}

func (p *jsParser) quoted() (string, error) {
	quote := p.src[p.pos]
	start := p.pos
	p.pos++
	escaped := false
	for !p.eof() {
		c := p.src[p.pos]
		p.pos++
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '\n':
			return "", p.errorf("newline in string")
		case c == quote:
			return unquote(p.src[start:p.pos])
		}
	}
	p.pos = start
	return "", p.errorf("unterminated string")
}

// unquote handles both quote styles, single quoted strings are rewritten to
// double quoted ones first
func unquote(s string) (string, error) {
	if s[0] == '\'' {
		s = doubleQuoted(s[1 : len(s)-1])
	}
	v, err := strconv.Unquote(s)
	if err != nil {
		return "", errors.Wrapf(err, "bad string literal %s", s)
	}
	return v, nil
}

// doubleQuoted rewrites the body of a single quoted literal: \' loses its
// backslash, other escapes stay, bare double quotes get one
func doubleQuoted(body string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			if body[i] != '\'' {
				b.WriteByte('\\')
			}
			b.WriteByte(body[i])
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// nodesFromValue converts [[title, target, children], ...]
func nodesFromValue(v interface{}) ([]*nav.Node, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("expected a list of nodes, got %T", v)
	}
	nodes := make([]*nav.Node, 0, len(list))
	for i, item := range list {
		n, err := nodeFromValue(item)
		if err != nil {
			return nil, errors.Wrapf(err, "node %d", i)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func nodeFromValue(v interface{}) (*nav.Node, error) {
	parts, ok := v.([]interface{})
	if !ok || len(parts) < 2 || len(parts) > 3 {
		return nil, errors.New("a node must be [title, target, children]")
	}
	title, ok := parts[0].(string)
	if !ok {
		return nil, errors.Errorf("title must be a string, got %T", parts[0])
	}
	n := nav.NewNode(title, "")
	switch target := parts[1].(type) {
	case nil:
	case string:
		n.Target = target
	default:
		return nil, errors.Errorf("target of %q must be a string or null, got %T", title, target)
	}
	if len(parts) == 3 && parts[2] != nil {
		children, err := nodesFromValue(parts[2])
		if err != nil {
			return nil, errors.Wrapf(err, "children of %q", title)
		}
		n.Children = children
	}
	return n, nil
}
