package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPolicy_String(t *testing.T) {
	assert.Equal(t, "default", ErrorsDefault.String())
	assert.Equal(t, "throw", ErrorsThrow.String())
	assert.Equal(t, "ignore", ErrorsIgnore.String())
}

func TestParseErrorPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want ErrorPolicy
		ok   bool
	}{
		{"", ErrorsDefault, true},
		{"default", ErrorsDefault, true},
		{"THROW", ErrorsThrow, true},
		{" ignore ", ErrorsIgnore, true},
		{"explode", ErrorsDefault, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseErrorPolicy(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestRequest_Key(t *testing.T) {
	base := Request{Dir: "/repo", Args: []string{"status", "--porcelain"}}

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, base.Key(), Request{Dir: "/repo", Args: []string{"status", "--porcelain"}}.Key())
	})

	t.Run("policy and encoding do not matter", func(t *testing.T) {
		other := base
		other.Errors = ErrorsIgnore
		other.Encoding = "latin1"
		other.ExitCodeOnly = true
		assert.Equal(t, base.Key(), other.Key())
	})

	t.Run("dir args and correlation key matter", func(t *testing.T) {
		keys := map[string]struct{}{base.Key(): {}}
		variants := []Request{
			{Dir: "/other", Args: base.Args},
			{Dir: "/repo", Args: []string{"status"}},
			{Dir: "/repo", Args: base.Args, CorrelationKey: "graph"},
			{Dir: "/repo", Args: base.Args, Configs: []string{"color.status=false"}},
			{Dir: "/repo", Args: base.Args, Stdin: []byte("a")},
			{Dir: "/repo", Args: base.Args, Stdin: []byte("b")},
		}
		for _, v := range variants {
			keys[v.Key()] = struct{}{}
		}
		assert.Len(t, keys, len(variants)+1)
	})

	t.Run("argument boundaries are kept", func(t *testing.T) {
		pairs := [][2]Request{
			{
				{Dir: "/repo", Args: []string{"log", "--", "a b"}},
				{Dir: "/repo", Args: []string{"log", "--", "a", "b"}},
			},
			{
				{Dir: "/repo", Args: []string{"status"}, Configs: []string{"a=b"}},
				{Dir: "/repo", Args: []string{"-c", "a=b", "status"}},
			},
			{
				{Dir: "/repo a", Args: []string{"status"}},
				{Dir: "/repo", Args: []string{"a", "status"}},
			},
			{
				{Dir: "/repo", Args: []string{"status"}, CorrelationKey: "x"},
				{Dir: "/repo", Args: []string{"status", "x"}},
			},
			{
				{Dir: "/repo", Args: []string{"a\"", "b"}},
				{Dir: "/repo", Args: []string{"a", "\" b"}},
			},
		}
		for _, p := range pairs {
			assert.NotEqual(t, p[0].Key(), p[1].Key(), "%q vs %q", p[0].Args, p[1].Args)
		}
	})

	t.Run("readable", func(t *testing.T) {
		r := base
		r.CorrelationKey = "ck"
		r.Args = []string{"log", "--", "a b"}
		assert.Equal(t, `ck="ck" dir="/repo" arg="log" arg="--" arg="a b"`, r.Key())
	})
}

func TestOutput_IsEmpty(t *testing.T) {
	var nilOut *Output
	assert.True(t, nilOut.IsEmpty())
	assert.True(t, (&Output{}).IsEmpty())
	assert.False(t, (&Output{Text: "x"}).IsEmpty())
	assert.False(t, (&Output{Bytes: []byte{0}}).IsEmpty())
}
