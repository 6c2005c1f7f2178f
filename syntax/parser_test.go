package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, src string) Node {
	t.Helper()
	list, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	return list.Items[0].Node
}

func litArgs(t *testing.T, cmd *SimpleCommand) []string {
	t.Helper()
	args := make([]string, 0, len(cmd.Args))
	for _, w := range cmd.Args {
		var b strings.Builder
		for _, part := range w.Parts {
			lit, ok := part.(*Lit)
			require.True(t, ok, "expected literal part, got %T", part)
			b.WriteString(lit.Text)
		}
		args = append(args, b.String())
	}
	return args
}

func TestParseSimpleCommand(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{"echo", []string{"echo"}},
		{"echo hello world", []string{"echo", "hello", "world"}},
		{"  ls   -la\t/tmp ", []string{"ls", "-la", "/tmp"}},
		{"git commit -m wip", []string{"git", "commit", "-m", "wip"}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			cmd, ok := parseOne(t, tt.src).(*SimpleCommand)
			require.True(t, ok)
			assert.Equal(t, tt.want, litArgs(t, cmd))
			assert.Empty(t, cmd.Assigns)
			assert.Empty(t, cmd.Redirects)
		})
	}
}

func TestParseWhitespaceSplitMatchesFields(t *testing.T) {
	src := "one two three four"
	cmd, ok := parseOne(t, src).(*SimpleCommand)
	require.True(t, ok)
	assert.Equal(t, strings.Fields(src), litArgs(t, cmd))
}

func TestParseQuoting(t *testing.T) {
	cmd, ok := parseOne(t, `echo 'single $X' "double" mix'ed'`).(*SimpleCommand)
	require.True(t, ok)
	require.Len(t, cmd.Args, 4)

	require.Len(t, cmd.Args[1].Parts, 1)
	assert.Equal(t, &Lit{Text: "single $X"}, cmd.Args[1].Parts[0])

	quoted, ok := cmd.Args[2].Parts[0].(*Quoted)
	require.True(t, ok)
	assert.Equal(t, &Lit{Text: "double"}, quoted.Word.Parts[0])

	require.Len(t, cmd.Args[3].Parts, 2)
	assert.Equal(t, &Lit{Text: "mix"}, cmd.Args[3].Parts[0])
	assert.Equal(t, &Lit{Text: "ed"}, cmd.Args[3].Parts[1])
}

func TestParseDollarForms(t *testing.T) {
	cmd, ok := parseOne(t, `echo $FOO ${BAR} $`).(*SimpleCommand)
	require.True(t, ok)
	require.Len(t, cmd.Args, 4)
	assert.Equal(t, &EnvVar{Name: "FOO"}, cmd.Args[1].Parts[0])
	assert.Equal(t, &EnvVar{Name: "BAR"}, cmd.Args[2].Parts[0])
	assert.Equal(t, &Lit{Text: "$"}, cmd.Args[3].Parts[0])
}

func TestParseDollarInDoubleQuotes(t *testing.T) {
	cmd, ok := parseOne(t, `echo "a $B c"`).(*SimpleCommand)
	require.True(t, ok)
	quoted, ok := cmd.Args[1].Parts[0].(*Quoted)
	require.True(t, ok)
	require.Len(t, quoted.Word.Parts, 3)
	assert.Equal(t, &Lit{Text: "a "}, quoted.Word.Parts[0])
	assert.Equal(t, &EnvVar{Name: "B"}, quoted.Word.Parts[1])
	assert.Equal(t, &Lit{Text: " c"}, quoted.Word.Parts[2])
}

func TestParseCommandSubstitution(t *testing.T) {
	cmd, ok := parseOne(t, `echo $(pwd)`).(*SimpleCommand)
	require.True(t, ok)
	subst, ok := cmd.Args[1].Parts[0].(*CmdSubst)
	require.True(t, ok)
	require.Len(t, subst.List.Items, 1)
	inner, ok := subst.List.Items[0].Node.(*SimpleCommand)
	require.True(t, ok)
	assert.Equal(t, []string{"pwd"}, litArgs(t, inner))
}

func TestParseAssignPrefix(t *testing.T) {
	cmd, ok := parseOne(t, `FOO=bar BAZ=qux env`).(*SimpleCommand)
	require.True(t, ok)
	require.Len(t, cmd.Assigns, 2)
	assert.Equal(t, "FOO", cmd.Assigns[0].Name)
	assert.Equal(t, "BAZ", cmd.Assigns[1].Name)
	assert.Equal(t, []string{"env"}, litArgs(t, cmd))
}

func TestParseAssignOnly(t *testing.T) {
	cmd, ok := parseOne(t, `FOO=bar`).(*SimpleCommand)
	require.True(t, ok)
	require.Len(t, cmd.Assigns, 1)
	assert.Empty(t, cmd.Args)
}

func TestParseAssignEmptyValue(t *testing.T) {
	cmd, ok := parseOne(t, `FOO=`).(*SimpleCommand)
	require.True(t, ok)
	require.Len(t, cmd.Assigns, 1)
	assert.Equal(t, &Lit{Text: ""}, cmd.Assigns[0].Value.Parts[0])
}

func TestAssignAfterFirstArgIsWord(t *testing.T) {
	cmd, ok := parseOne(t, `echo FOO=bar`).(*SimpleCommand)
	require.True(t, ok)
	assert.Empty(t, cmd.Assigns)
	assert.Equal(t, []string{"echo", "FOO=bar"}, litArgs(t, cmd))
}

func TestParsePipeline(t *testing.T) {
	pipe, ok := parseOne(t, `echo hi | cat`).(*Pipeline)
	require.True(t, ok)
	assert.False(t, pipe.StderrToo)
	left, ok := pipe.Left.(*SimpleCommand)
	require.True(t, ok)
	assert.Equal(t, []string{"echo", "hi"}, litArgs(t, left))
	right, ok := pipe.Right.(*SimpleCommand)
	require.True(t, ok)
	assert.Equal(t, []string{"cat"}, litArgs(t, right))
}

func TestParsePipelineStderrToo(t *testing.T) {
	pipe, ok := parseOne(t, `a |& b`).(*Pipeline)
	require.True(t, ok)
	assert.True(t, pipe.StderrToo)
}

func TestParsePipelineLeftAssoc(t *testing.T) {
	pipe, ok := parseOne(t, `a | b | c`).(*Pipeline)
	require.True(t, ok)
	_, ok = pipe.Left.(*Pipeline)
	assert.True(t, ok)
}

func TestParseBooleanList(t *testing.T) {
	and, ok := parseOne(t, `true && echo A`).(*BooleanList)
	require.True(t, ok)
	assert.Equal(t, AndOp, and.Op)

	or, ok := parseOne(t, `false || echo A`).(*BooleanList)
	require.True(t, ok)
	assert.Equal(t, OrOp, or.Op)
}

func TestParseBooleanBindsLooserThanPipe(t *testing.T) {
	node, ok := parseOne(t, `a | b && c`).(*BooleanList)
	require.True(t, ok)
	_, ok = node.Left.(*Pipeline)
	assert.True(t, ok)
}

func TestParseSequentialSeparators(t *testing.T) {
	list, err := Parse("echo a; echo b\necho c")
	require.NoError(t, err)
	require.Len(t, list.Items, 3)
	for _, item := range list.Items {
		assert.False(t, item.Async)
	}
}

func TestParseBackground(t *testing.T) {
	list, err := Parse("sleep 1 & echo done")
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.True(t, list.Items[0].Async)
	assert.False(t, list.Items[1].Async)
}

func TestParseSubshell(t *testing.T) {
	sub, ok := parseOne(t, `(cd /tmp; pwd)`).(*Subshell)
	require.True(t, ok)
	assert.Len(t, sub.Inner.Items, 2)
}

func TestParseRedirects(t *testing.T) {
	cmd, ok := parseOne(t, `echo hi >out.txt 2>&1`).(*SimpleCommand)
	require.True(t, ok)
	require.Len(t, cmd.Redirects, 2)

	assert.Equal(t, 1, cmd.Redirects[0].Fd)
	assert.Equal(t, RedirWrite, cmd.Redirects[0].Op)
	assert.NotNil(t, cmd.Redirects[0].Target)
	assert.Equal(t, -1, cmd.Redirects[0].DupFd)

	assert.Equal(t, 2, cmd.Redirects[1].Fd)
	assert.Equal(t, 1, cmd.Redirects[1].DupFd)
	assert.Nil(t, cmd.Redirects[1].Target)
}

func TestParseRedirectAppendAndRead(t *testing.T) {
	cmd, ok := parseOne(t, `cat <in.txt >>log.txt`).(*SimpleCommand)
	require.True(t, ok)
	require.Len(t, cmd.Redirects, 2)
	assert.Equal(t, RedirRead, cmd.Redirects[0].Op)
	assert.Equal(t, 0, cmd.Redirects[0].Fd)
	assert.Equal(t, RedirAppend, cmd.Redirects[1].Op)
	assert.Equal(t, 1, cmd.Redirects[1].Fd)
}

func TestDigitsWithoutOperatorStayInWord(t *testing.T) {
	cmd, ok := parseOne(t, `echo 2 22`).(*SimpleCommand)
	require.True(t, ok)
	assert.Equal(t, []string{"echo", "2", "22"}, litArgs(t, cmd))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unterminated single quote", "echo 'abc"},
		{"unterminated double quote", `echo "abc`},
		{"unterminated subshell", "(echo hi"},
		{"unterminated command substitution", "echo $(pwd"},
		{"empty pipeline right", "echo hi |"},
		{"empty pipeline left", "| cat"},
		{"empty and right", "true &&"},
		{"missing redirect target", "echo >"},
		{"bad substitution", `echo ${`},
		{"stray paren", "echo hi )"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.GreaterOrEqual(t, perr.Offset, 0)
		})
	}
}

func TestParseErrorOffset(t *testing.T) {
	_, err := Parse("echo 'oops")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 5, perr.Offset)
}

func TestParseEmptySource(t *testing.T) {
	list, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	list, err = Parse("  \n ; \n ")
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestEscapedCharacters(t *testing.T) {
	cmd, ok := parseOne(t, `echo a\ b`).(*SimpleCommand)
	require.True(t, ok)
	assert.Equal(t, []string{"echo", "a b"}, litArgs(t, cmd))
}
