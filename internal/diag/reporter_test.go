package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mcrl2/internal/aterm"
)

func TestReporterCollectsAndRenders(t *testing.T) {
	s := aterm.NewStore()
	subject := s.MakeAppl(s.MakeSymbol("Choice", 2, false),
		s.MakeAppl(s.MakeSymbol("Delta", 0, false)),
		s.MakeAppl(s.MakeSymbol("Delta", 0, false)))

	r := NewReporter()
	assert.False(t, r.Failed())

	r.Warnf(WarnEnumBound, nil, "enumeration uses more than %d variables", 1000)
	assert.False(t, r.Failed(), "warnings do not fail the pipeline")

	r.Errorf(ErrorBadNesting, subject, "choice operator occurs in a multi-action")
	assert.True(t, r.Failed())
	assert.Len(t, r.Diagnostics(), 2)

	var buf bytes.Buffer
	r.Render(&buf)
	out := buf.String()
	assert.Contains(t, out, ErrorBadNesting)
	assert.Contains(t, out, "choice operator")
	assert.Contains(t, out, "Choice(Delta,Delta)")
	assert.Contains(t, out, WarnEnumBound)
}

func TestSummarizeTruncates(t *testing.T) {
	s := aterm.NewStore()
	deep := s.MakeAppl(s.MakeSymbol("leaf", 0, false))
	f := s.MakeSymbol("verylongfunctionname", 1, false)
	for i := 0; i < 20; i++ {
		deep = s.MakeAppl(f, deep)
	}
	sum := Summarize(deep)
	assert.LessOrEqual(t, len(sum), 72)
	assert.True(t, strings.HasSuffix(sum, "..."))
	assert.Equal(t, "", Summarize(nil))
}
