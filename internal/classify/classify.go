// Package classify maps a file path to a crypto file kind, and extracts a
// canonical library name from a shared-object path, via small map-driven
// lookups keyed by a normalized string.
package classify

import (
	"path"
	"strings"

	"github.com/cryptowatch/cryptowatch/internal/pool"
)

// certExtensions, keyExtensions, keystoreExtensions are the canonical
// extension sets. Every .pem classifies as a certificate even though
// PEM-encoded private keys are common; a content-sniff pass could refine
// this without violating the no-secret-content-logged rule, but this
// implementation does not add one.
var (
	certExtensions     = map[string]bool{"pem": true, "crt": true, "cer": true}
	keyExtensions      = map[string]bool{"key": true}
	keystoreExtensions = map[string]bool{"p12": true, "pfx": true, "jks": true, "keystore": true}
)

// CanonicalLibraries is the whitelist of crypto shared-object substrings
// the event driver and the snapshot scanner both apply. It is a package
// var rather than a constant so the core layer can replace it wholesale
// at startup with an operator-supplied list; nothing in this package
// mutates it after that point.
var CanonicalLibraries = []string{
	"libssl", "libcrypto", "libgnutls", "libsodium", "libnss3", "libmbedtls",
}

// FileKind decides the crypto file kind for path by its last extension,
// case-insensitive. Paths with no extension, or an extension outside the
// three canonical sets, classify as unknown.
func FileKind(filePath string) pool.FileKind {
	ext := extensionOf(filePath)
	if ext == "" {
		return pool.FileKindUnknown
	}
	switch {
	case certExtensions[ext]:
		return pool.FileKindCertificate
	case keyExtensions[ext]:
		return pool.FileKindPrivateKey
	case keystoreExtensions[ext]:
		return pool.FileKindKeystore
	default:
		return pool.FileKindUnknown
	}
}

func extensionOf(filePath string) string {
	base := path.Base(filePath)
	idx := strings.LastIndexByte(base, '.')
	if idx < 0 || idx == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// LibraryName takes the final path segment of path and truncates it at the
// first '.', so "/usr/lib/libssl.so.1.1" becomes "libssl". A bare name with
// no path and no extension is returned as-is. Empty input returns "".
func LibraryName(libPath string) string {
	if libPath == "" {
		return ""
	}
	base := path.Base(libPath)
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		return base[:idx]
	}
	return base
}

// IsCanonicalLibrary reports whether libPath or its extracted library name
// contains one of the canonical crypto library substrings. Matching is
// case-insensitive, mirroring filter.go's substring predicates.
func IsCanonicalLibrary(libPath string) bool {
	lower := strings.ToLower(libPath)
	for _, canon := range CanonicalLibraries {
		if strings.Contains(lower, strings.ToLower(canon)) {
			return true
		}
	}
	return false
}

// IsCryptoFile reports whether filePath's extension falls in one of the
// three canonical crypto-file extension sets. This is the kind-specific
// acceptance filter the event driver applies to file_open events.
func IsCryptoFile(filePath string) bool {
	return FileKind(filePath) != pool.FileKindUnknown
}
