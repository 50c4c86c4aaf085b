// Package redact rewrites paths under user-home roots to opaque forms
// while leaving system paths untouched, via plain string prefix rewriting
// that needs nothing beyond the standard library.
package redact

import "strings"

// systemRoots are first path segments that are always returned verbatim.
var systemRoots = map[string]bool{
	"etc": true, "usr": true, "lib": true, "lib64": true, "sys": true,
	"proc": true, "dev": true, "tmp": true, "opt": true, "bin": true, "sbin": true,
}

const varLibPrefix = "/var/lib"

// Redactor applies (or, when disabled, does not apply) the path rewrite.
// The interface is defined so a future redactor — e.g. one that also
// touches command lines — can be substituted without a schema change.
type Redactor interface {
	RedactPath(path string) string
}

// Path is the default Redactor: always-on path redaction.
type Path struct{}

// Disabled is the identity Redactor, used when --disable-redaction is set.
type Disabled struct{}

func (Path) RedactPath(path string) string { return RedactPath(path) }

func (Disabled) RedactPath(path string) string { return path }

// New returns the Redactor implied by the disable flag.
func New(disabled bool) Redactor {
	if disabled {
		return Disabled{}
	}
	return Path{}
}

// RedactPath applies the following rewrite rules:
//
//	/home/<anything>/REST -> /home/USER/REST
//	/home/<anything>      -> /home/USER
//	/root/REST            -> /home/ROOT/REST
//	/root                 -> /home/ROOT
//	paths whose first segment is a system root are verbatim
//	everything else is verbatim
//
// RedactPath is idempotent: RedactPath(RedactPath(p)) == RedactPath(p).
func RedactPath(p string) string {
	if p == "" {
		return p
	}
	if isVarLib(p) {
		return p
	}
	if rest, ok := cutPrefix(p, "/root"); ok {
		if rest == "" {
			return "/home/ROOT"
		}
		if rest[0] == '/' {
			return "/home/ROOT" + rest
		}
		// e.g. "/rootsomething" is not actually under /root.
		return p
	}
	// Already-redacted paths are fixed points: without this check,
	// cutHomeUser would treat "ROOT"/"USER" as an ordinary username
	// segment and rewrite "/home/ROOT" to "/home/USER", breaking
	// RedactPath(RedactPath(p)) == RedactPath(p).
	if p == "/home/ROOT" || strings.HasPrefix(p, "/home/ROOT/") {
		return p
	}
	if p == "/home/USER" || strings.HasPrefix(p, "/home/USER/") {
		return p
	}
	if rest, ok := cutHomeUser(p); ok {
		if rest == "" {
			return "/home/USER"
		}
		return "/home/USER" + rest
	}
	seg := firstSegment(p)
	if systemRoots[seg] {
		return p
	}
	return p
}

func isVarLib(p string) bool {
	return p == varLibPrefix || strings.HasPrefix(p, varLibPrefix+"/")
}

func cutPrefix(p, prefix string) (rest string, ok bool) {
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return p[len(prefix):], true
}

// cutHomeUser matches "/home/<anything>" and returns the remainder after
// the username segment (possibly empty, possibly starting with '/').
func cutHomeUser(p string) (rest string, ok bool) {
	const prefix = "/home/"
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	tail := p[len(prefix):]
	if tail == "" {
		return "", false
	}
	if idx := strings.IndexByte(tail, '/'); idx >= 0 {
		return tail[idx:], true
	}
	return "", true
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if idx := strings.IndexByte(p, '/'); idx >= 0 {
		return p[:idx]
	}
	return p
}
