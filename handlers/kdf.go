package handlers

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"strconv"

	"golang.org/x/crypto/pbkdf2"

	"github.com/binref/refinery-go/multibin"
)

// Default PBKDF2 parameters (SPEC_FULL.md §D.1): HMAC-SHA1, 10,000
// iterations, matching the original tool's documented default before any
// unit-level override.
const (
	DefaultPBKDF2Iterations = 10000
	DefaultPBKDF2KeyLen     = 32
)

// pbkdf2Handler derives a key from the password produced by the atom to its
// right using the literal salt given as its second bracket argument, e.g.
// `pbkdf2[32,s4lty]:swordfish` derives a 32-byte key from the password
// "swordfish" salted with "s4lty" (spec.md §4.3 kdf row, §8 worked example:
// PBKDF2-HMAC-SHA1("swordfish", "s4lty", …)). This matches every sibling
// handler in this file, which all hash their composed input rather than the
// chunk's own payload.
type pbkdf2Handler struct{}

func PBKDF2() multibin.Handler { return pbkdf2Handler{} }

func (pbkdf2Handler) Name() string { return "pbkdf2" }

func (pbkdf2Handler) Eval(ctx *multibin.Context, args []string, password []byte) ([]byte, error) {
	keyLen := DefaultPBKDF2KeyLen
	if len(args) > 0 && args[0] != "" {
		if n, err := strconv.Atoi(args[0]); err == nil {
			keyLen = n
		}
	}
	var salt []byte
	if len(args) > 1 {
		salt = []byte(args[1])
	}
	return pbkdf2.Key(password, salt, DefaultPBKDF2Iterations, keyLen, sha1.New), nil
}

type md5Handler struct{}

func MD5() multibin.Handler { return md5Handler{} }
func (md5Handler) Name() string { return "md5" }
func (md5Handler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	sum := md5.Sum(input)
	return sum[:], nil
}

type sha1Handler struct{}

func SHA1() multibin.Handler { return sha1Handler{} }
func (sha1Handler) Name() string { return "sha1" }
func (sha1Handler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	sum := sha1.Sum(input)
	return sum[:], nil
}

type sha256Handler struct{}

func SHA256() multibin.Handler { return sha256Handler{} }
func (sha256Handler) Name() string { return "sha256" }
func (sha256Handler) Eval(ctx *multibin.Context, args []string, input []byte) ([]byte, error) {
	sum := sha256.Sum256(input)
	return sum[:], nil
}
