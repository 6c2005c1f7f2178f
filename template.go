package shx

import (
	"fmt"
	"strings"

	"github.com/go-shx/shx/internal/iox"
	"github.com/go-shx/shx/syntax"
)

// Cmdf builds a command from a format string. Only %s and %% verbs are
// recognised. Each argument renders as exactly one argv token, quoted when
// it contains anything outside the safe character set; a []string argument
// expands to one token per element and a *Result argument interpolates its
// captured stdout with one trailing newline removed.
func (s *Shx) Cmdf(format string, args ...any) *Builder {
	return s.cmdf(format, args, true)
}

// RawCmdf is Cmdf without quoting: arguments are spliced verbatim, and a
// []string argument is space-joined.
func (s *Shx) RawCmdf(format string, args ...any) *Builder {
	return s.cmdf(format, args, false)
}

func (s *Shx) cmdf(format string, args []any, quote bool) *Builder {
	source, err := expandFormat(format, args, quote)
	b := s.Command(source)
	if err != nil {
		return b.fail(err.Error())
	}
	return b
}

// Cmdf builds a command on the default factory.
func Cmdf(format string, args ...any) *Builder {
	return Default.Cmdf(format, args...)
}

// RawCmdf builds an unquoted command on the default factory.
func RawCmdf(format string, args ...any) *Builder {
	return Default.RawCmdf(format, args...)
}

func expandFormat(format string, args []any, quote bool) (string, error) {
	var b strings.Builder
	next := 0
	for i := 0; i < len(format); i++ {
		ch := format[i]
		if ch != '%' {
			b.WriteByte(ch)
			continue
		}
		if i+1 >= len(format) {
			return b.String(), fmt.Errorf("format ends with a lone %%")
		}
		i++
		switch format[i] {
		case '%':
			b.WriteByte('%')
		case 's':
			if next >= len(args) {
				return b.String(), fmt.Errorf("format has more %%s verbs than arguments")
			}
			b.WriteString(renderArg(args[next], quote))
			next++
		default:
			return b.String(), fmt.Errorf("unsupported verb %%%c, only %%s is recognised", format[i])
		}
	}
	if next < len(args) {
		return b.String(), fmt.Errorf("format has fewer %%s verbs than arguments (%d unused)", len(args)-next)
	}
	return b.String(), nil
}

func renderArg(v any, quote bool) string {
	switch arg := v.(type) {
	case []string:
		tokens := make([]string, len(arg))
		for i, t := range arg {
			if quote {
				tokens[i] = syntax.Quote(t)
			} else {
				tokens[i] = t
			}
		}
		return strings.Join(tokens, " ")
	case *Result:
		text := iox.Text(arg.Bytes())
		if quote {
			return syntax.Quote(text)
		}
		return text
	case string:
		if quote {
			return syntax.Quote(arg)
		}
		return arg
	default:
		text := fmt.Sprint(arg)
		if quote {
			return syntax.Quote(text)
		}
		return text
	}
}
