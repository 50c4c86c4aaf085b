package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactPath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"/home/alice/x.pem", "/home/USER/x.pem"},
		{"/root/.ssh/k", "/home/ROOT/.ssh/k"},
		{"/root", "/home/ROOT"},
		{"/etc/ssl/x.pem", "/etc/ssl/x.pem"},
		{"/home/bob", "/home/USER"},
		{"/var/lib/foo", "/var/lib/foo"},
		{"/opt/app/cert.pem", "/opt/app/cert.pem"},
		{"/not/special/path", "/not/special/path"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, RedactPath(c.in), "in=%s", c.in)
	}
}

func TestRedactPathIdempotent(t *testing.T) {
	for _, p := range []string{"/home/alice/x.pem", "/root", "/etc/ssl/x.pem", "/home/USER/y"} {
		once := RedactPath(p)
		twice := RedactPath(once)
		require.Equal(t, once, twice, "not idempotent for %s", p)
	}
}

func TestDisabledRedactorIsIdentity(t *testing.T) {
	r := New(true)
	require.Equal(t, "/home/alice/x.pem", r.RedactPath("/home/alice/x.pem"))
}

func TestEnabledRedactorMatchesFunction(t *testing.T) {
	r := New(false)
	require.Equal(t, RedactPath("/home/alice/x.pem"), r.RedactPath("/home/alice/x.pem"))
}
