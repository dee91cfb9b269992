package resolve

import (
	"crypto/rand"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
)

// Secret length contracts. Freshly generated site secrets are exactly
// SecretLength characters; LegacySecretLength identifies values produced by
// the old, weaker generator and marks them for regeneration.
const (
	SecretLength       = 64
	LegacySecretLength = 256
)

// secretAlphabet is the character set for generated secrets.
const secretAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// FindOnPath returns a provider that locates an executable by name on the
// search path. The provider returns the absolute path, or the empty string
// when the tool is not installed.
func FindOnPath(name string) func() any {
	return func() any {
		path, err := exec.LookPath(name)
		if err != nil {
			return ""
		}
		return path
	}
}

// DirOf returns a provider that yields the directory containing the path
// produced by another provider. An empty inner result stays empty.
func DirOf(inner func() any) func() any {
	return func() any {
		path, _ := inner().(string)
		if path == "" {
			return ""
		}
		return filepath.Dir(path)
	}
}

// EffectiveGroup returns a provider that resolves the group name of the
// current process's effective group id. Returns the empty string when the
// group cannot be looked up.
func EffectiveGroup() func() any {
	return func() any {
		g, err := user.LookupGroupId(strconv.Itoa(os.Getegid()))
		if err != nil {
			return ""
		}
		return g.Name
	}
}

// EmptyMapping returns a provider that yields a fresh empty mapping on
// every call. Mapping defaults must not share one instance: a caller
// mutating a resolved default would otherwise mutate it for every later
// resolution.
func EmptyMapping() func() any {
	return func() any {
		return map[string]any{}
	}
}

// Secret returns a provider that generates a high-entropy random string of
// exactly n characters.
func Secret(n int) func() any {
	return func() any {
		return RandomSecret(n)
	}
}

// RandomSecret generates a cryptographically strong random string of exactly
// n characters from the secret alphabet.
func RandomSecret(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// a guessable secret must never be produced in that state.
		panic("resolve: system random source unavailable: " + err.Error())
	}
	for i, v := range b {
		b[i] = secretAlphabet[int(v)%len(secretAlphabet)]
	}
	return string(b)
}
