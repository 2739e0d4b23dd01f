// Package tlsfiles locates an on-disk certificate/key pair for the
// transport listeners. Certificate generation is out of scope; something
// else provisions the files, this package only finds them.
package tlsfiles

import "os"

// Pair is a certificate/private-key file pair.
type Pair struct {
	CertFile string
	KeyFile  string
}

// Locate returns the first candidate pair whose files both exist. The
// second return value is false when no pair is usable, in which case the
// caller must fall back to the unencrypted listener and say so loudly:
// the scheme on the wire changes.
func Locate(candidates []Pair) (Pair, bool) {
	for _, p := range candidates {
		if fileExists(p.CertFile) && fileExists(p.KeyFile) {
			return p, true
		}
	}
	return Pair{}, false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
