//go:build e2e

package test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiCall is one request in a scripted flow whose response is a JSON object.
type apiCall struct {
	name   string
	method string
	path   string
	body   any
	header map[string]string
	want   int
	check  func(*testing.T, map[string]any)
}

func (c apiCall) run(t *testing.T, env *TestEnvironment) map[string]any {
	t.Helper()
	t.Logf("call: %s %s (%s)", c.method, c.path, c.name)

	var out map[string]any
	doRequest(t, c.method, env.BaseURL+c.path, c.body, c.header, c.want, &out)

	if c.check != nil {
		c.check(t, out)
	}
	return out
}

func runCalls(t *testing.T, env *TestEnvironment, calls ...apiCall) {
	t.Helper()
	for _, c := range calls {
		c.run(t, env)
	}
}

func hasFields(fields ...string) func(*testing.T, map[string]any) {
	return func(t *testing.T, m map[string]any) {
		t.Helper()
		for _, f := range fields {
			require.Contains(t, m, f)
			require.NotEmpty(t, m[f], f)
		}
	}
}

func hasMessage(want string) func(*testing.T, map[string]any) {
	return func(t *testing.T, m map[string]any) {
		t.Helper()
		assert.Equal(t, want, m["message"])
	}
}

func stringField(t *testing.T, m map[string]any, key string) string {
	t.Helper()
	s, ok := m[key].(string)
	require.True(t, ok, "%s should be a string", key)
	require.NotEmpty(t, s)
	return s
}
