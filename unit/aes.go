package unit

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/binref/refinery-go/chunk"
	"github.com/binref/refinery-go/multibin"
)

// AesUnit is the `aes` unit: AES-CBC, reversible, with PKCS#7 padding.
// Key and IV are each multibin expressions, re-evaluated per chunk so
// `var:…`-sourced keys track per-chunk meta (spec.md §4.4). No pack
// example ships a higher-level AEAD/KMS wrapper, so this stays on the
// standard library's crypto/aes and crypto/cipher (DESIGN.md justifies the
// choice; golang.org/x/crypto is reserved for pbkdf2, which the standard
// library has no equivalent for).
type AesUnit struct {
	Base
	Eval    Evaluator
	KeyProg *multibin.Program
	IVProg  *multibin.Program
}

func NewAes(eval Evaluator, keyExpr, ivExpr string) (*AesUnit, error) {
	keyProg, err := multibin.Compile(keyExpr)
	if err != nil {
		return nil, err
	}
	ivProg, err := multibin.Compile(ivExpr)
	if err != nil {
		return nil, err
	}
	return &AesUnit{Base: Base{"aes"}, Eval: eval, KeyProg: keyProg, IVProg: ivProg}, nil
}

func (u *AesUnit) resolve(c *chunk.Chunk) (key, iv []byte, err error) {
	key, err = u.Eval.Eval(c, u.KeyProg)
	if err != nil {
		return nil, nil, err
	}
	iv, err = u.Eval.Eval(c, u.IVProg)
	if err != nil {
		return nil, nil, err
	}
	return key, iv, nil
}

func (u *AesUnit) Process(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	key, iv, err := u.resolve(c)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	if len(c.Payload)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("aes: ciphertext is not a multiple of the block size")
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("aes: iv must be %d bytes", block.BlockSize())
	}
	out := make([]byte, len(c.Payload))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, c.Payload)
	out, err = pkcs7Unpad(out, block.BlockSize())
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	return one(c.Derive(out))
}

func (u *AesUnit) Reverse(c *chunk.Chunk) ([]*chunk.Chunk, error) {
	key, iv, err := u.resolve(c)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("aes: iv must be %d bytes", block.BlockSize())
	}
	padded := pkcs7Pad(c.Payload, block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return one(c.Derive(out))
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return b[:len(b)-n], nil
}
