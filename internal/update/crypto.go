package update

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Decrypter turns the published cipher text back into the release JSON.
type Decrypter interface {
	Decrypt(cipherText string) (string, error)
}

// DecrypterFunc adapts a plain function to Decrypter.
type DecrypterFunc func(string) (string, error)

func (f DecrypterFunc) Decrypt(s string) (string, error) { return f(s) }

// AESDecrypter is AES-CBC with PKCS#7 padding over base64 text.
type AESDecrypter struct {
	block cipher.Block
	iv    []byte
}

func NewAESDecrypter(key, iv string) (*AESDecrypter, error) {
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("aes key: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("aes iv: want %d bytes, got %d", aes.BlockSize, len(iv))
	}
	return &AESDecrypter{block: block, iv: []byte(iv)}, nil
}

func (d *AESDecrypter) Decrypt(cipherText string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(cipherText))
	if err != nil {
		return "", fmt.Errorf("%w: base64: %v", ErrDecrypt, err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: length %d is not a multiple of the block size", ErrDecrypt, len(raw))
	}
	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(d.block, d.iv).CryptBlocks(out, raw)
	out, err = unpad(out)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encrypt is the inverse of Decrypt; it produces what the note publishes.
func (d *AESDecrypter) Encrypt(plain string) string {
	data := pad([]byte(plain))
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(d.block, d.iv).CryptBlocks(out, data)
	return base64.StdEncoding.EncodeToString(out)
}

func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

var errPadding = errors.New("bad padding")

func unpad(b []byte) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, errPadding)
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("%w: %v", ErrDecrypt, errPadding)
		}
	}
	return b[:len(b)-n], nil
}
