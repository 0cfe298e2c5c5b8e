// Package runnertest provides a recording runner.Runner for tests.
package runnertest

import (
	"context"
	"strings"

	"github.com/nightconcept/fbuild/internal/core/runner"
)

// Call is one recorded invocation.
type Call struct {
	Name string
	Args []string
}

// String renders the call as a command line.
func (c Call) String() string {
	return runner.CommandLine(c.Name, c.Args...)
}

// Response is the canned result for a command line.
type Response struct {
	Out []byte
	Err error
}

// Recorder records every command and answers from Responses, keyed by the full
// command line (e.g. "git rev-list --count HEAD"). Unknown commands succeed with
// empty output.
type Recorder struct {
	Responses map[string]Response
	Calls     []Call
}

// New returns a Recorder with an empty response table.
func New() *Recorder {
	return &Recorder{Responses: make(map[string]Response)}
}

// On registers the response for a command line.
func (r *Recorder) On(cmdLine string, out string, err error) *Recorder {
	r.Responses[cmdLine] = Response{Out: []byte(out), Err: err}
	return r
}

func (r *Recorder) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	return r.respond(name, args)
}

func (r *Recorder) Run(_ context.Context, name string, args ...string) error {
	_, err := r.respond(name, args)
	return err
}

func (r *Recorder) respond(name string, args []string) ([]byte, error) {
	call := Call{Name: name, Args: append([]string(nil), args...)}
	r.Calls = append(r.Calls, call)
	resp := r.Responses[call.String()]
	return resp.Out, resp.Err
}

// Lines returns the recorded calls as command lines, in order.
func (r *Recorder) Lines() []string {
	lines := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		lines = append(lines, c.String())
	}
	return lines
}

// Called reports whether any recorded command line starts with prefix.
func (r *Recorder) Called(prefix string) bool {
	for _, c := range r.Calls {
		if strings.HasPrefix(c.String(), prefix) {
			return true
		}
	}
	return false
}
