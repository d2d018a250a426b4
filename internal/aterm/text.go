package aterm

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Textual term format: f(a,b), "quoted name"(x), [e1,e2], integers.

var termLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Ident", Pattern: `[<@A-Za-z_][<>@A-Za-z0-9_'#-]*`},
	{Name: "Punct", Pattern: `[\[\](),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type textTerm struct {
	Int  *string   `  @Int`
	List *textList `| @@`
	Appl *textAppl `| @@`
}

type textList struct {
	Elems []*textTerm `"[" ( @@ ( "," @@ )* )? "]"`
}

type textAppl struct {
	Quoted *string     `( @String`
	Name   *string     `| @Ident )`
	Args   []*textTerm `( "(" @@ ( "," @@ )* ")" )?`
}

var termParser = participle.MustBuild[textTerm](
	participle.Lexer(termLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ReadTextString parses the textual representation of a single term.
// On malformed input it returns the store's invalid term and an error.
func (s *Store) ReadTextString(src string) (*Term, error) {
	parsed, err := termParser.ParseString("", src)
	if err != nil {
		return s.invalid, fmt.Errorf("aterm: malformed term text: %w", err)
	}
	return s.fromText(parsed)
}

// ReadText reads a textual term from r.
func (s *Store) ReadText(r io.Reader) (*Term, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return s.invalid, err
	}
	return s.ReadTextString(string(src))
}

// WriteText writes t's textual representation to w.
func WriteText(w io.Writer, t *Term) error {
	_, err := io.WriteString(w, t.String())
	return err
}

func (s *Store) fromText(tt *textTerm) (*Term, error) {
	switch {
	case tt.Int != nil:
		n, err := strconv.ParseInt(*tt.Int, 10, 64)
		if err != nil {
			return s.invalid, fmt.Errorf("aterm: integer literal out of range: %s", *tt.Int)
		}
		return s.MakeInt(n), nil
	case tt.List != nil:
		elems := make([]*Term, 0, len(tt.List.Elems))
		for _, e := range tt.List.Elems {
			t, err := s.fromText(e)
			if err != nil {
				return s.invalid, err
			}
			elems = append(elems, t)
		}
		return s.List(elems...), nil
	default:
		var name string
		quoted := false
		if tt.Appl.Quoted != nil {
			unq, err := strconv.Unquote(*tt.Appl.Quoted)
			if err != nil {
				return s.invalid, fmt.Errorf("aterm: bad quoted name %s", *tt.Appl.Quoted)
			}
			name, quoted = unq, true
		} else {
			name = *tt.Appl.Name
		}
		args := make([]*Term, 0, len(tt.Appl.Args))
		for _, a := range tt.Appl.Args {
			t, err := s.fromText(a)
			if err != nil {
				return s.invalid, err
			}
			args = append(args, t)
		}
		return s.MakeAppl(s.MakeSymbol(name, len(args), quoted), args...), nil
	}
}
