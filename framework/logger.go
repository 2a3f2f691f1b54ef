package framework

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

type Logger interface {
	Println(args ...interface{})
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Println(args ...interface{})                {}
func (n nullLogger) Printf(message string, args ...interface{}) {}

func NullLogger() Logger { return nullLogger{} }

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger records everything written to it, either as log calls or as raw bytes via
// Write. The suite runner hands one to the interpreter process as its stdout and stderr so
// that the output of a failed test can be shown afterward.
type CapturingLogger struct {
	output  []CapturedMessage
	partial string
	lock    sync.Mutex
}

func (l *CapturingLogger) Println(args ...interface{}) {
	m := strings.TrimRight(fmt.Sprintln(args...), "\r\n") // Sprintln appends a newline
	l.append(CapturedMessage{Time: time.Now(), Message: m})
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.append(CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
}

// Write implements io.Writer. Each complete line becomes one message; an unterminated
// trailing line is held until more data arrives or Flush is called.
func (l *CapturingLogger) Write(p []byte) (int, error) {
	l.lock.Lock()
	data := l.partial + string(p)
	lines := strings.Split(data, "\n")
	l.partial = lines[len(lines)-1]
	now := time.Now()
	for _, line := range lines[:len(lines)-1] {
		l.output = append(l.output, CapturedMessage{Time: now, Message: strings.TrimRight(line, "\r")})
	}
	l.lock.Unlock()
	return len(p), nil
}

// Flush turns any unterminated output line into a message.
func (l *CapturingLogger) Flush() {
	l.lock.Lock()
	if l.partial != "" {
		l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: l.partial})
		l.partial = ""
	}
	l.lock.Unlock()
}

func (l *CapturingLogger) append(m CapturedMessage) {
	l.lock.Lock()
	l.output = append(l.output, m)
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

func (output CapturedOutput) ToString(prefix string) string {
	ret := ""
	for _, m := range output {
		if ret != "" {
			ret += "\n"
		}
		ret += fmt.Sprintf("%s[%s] %s",
			prefix,
			m.Time.Format(timestampFormat),
			m.Message,
		)
	}
	return ret
}

type prefixedLogger struct {
	base   Logger
	prefix string
}

func LoggerWithPrefix(baseLogger Logger, prefix string) Logger {
	return prefixedLogger{baseLogger, prefix}
}

func (p prefixedLogger) Println(args ...interface{}) {
	p.base.Println(append([]interface{}{p.prefix}, args...)...)
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.base.Printf(p.prefix+message, args...)
}
