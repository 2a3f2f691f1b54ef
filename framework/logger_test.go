package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapturingLoggerSplitsWrittenLines(t *testing.T) {
	var l CapturingLogger
	_, _ = l.Write([]byte("first line\nsecond "))
	_, _ = l.Write([]byte("line\r\nthird"))
	l.Flush()

	out := l.Output()
	if assert.Len(t, out, 3) {
		assert.Equal(t, "first line", out[0].Message)
		assert.Equal(t, "second line", out[1].Message)
		assert.Equal(t, "third", out[2].Message)
	}
}

func TestCapturingLoggerMixesLogCallsAndWrites(t *testing.T) {
	var l CapturingLogger
	l.Printf("running %s", "test144.scxml")
	_, _ = l.Write([]byte("ok\n"))
	l.Println("exit", 0)

	out := l.Output()
	if assert.Len(t, out, 3) {
		assert.Equal(t, "running test144.scxml", out[0].Message)
		assert.Equal(t, "ok", out[1].Message)
		assert.Equal(t, "exit 0", out[2].Message)
	}
}

func TestCapturedOutputToString(t *testing.T) {
	var l CapturingLogger
	l.Println("a")
	l.Println("b")
	s := l.Output().ToString("  DEBUG ")
	assert.Regexp(t, `^  DEBUG \[[^\]]+\] a\n  DEBUG \[[^\]]+\] b$`, s)
}

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Println(args ...interface{}) {
	for _, a := range args {
		r.lines = append(r.lines, a.(string))
	}
}

func (r *recordingLogger) Printf(message string, args ...interface{}) {
	r.lines = append(r.lines, message)
}

func TestLoggerWithPrefix(t *testing.T) {
	base := &recordingLogger{}
	l := LoggerWithPrefix(base, "[test144] ")
	l.Printf("fetching %s")
	l.Println("done")
	assert.Equal(t, []string{"[test144] fetching %s", "[test144] ", "done"}, base.lines)
}
