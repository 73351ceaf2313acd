// pkg/swap/encrypt.go

package swap

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

type aesEncryptor struct {
	aead cipher.AEAD
}

// NewAESEncryptor derives an AES-256-GCM key from passphrase and salt.
func NewAESEncryptor(passphrase string, salt []byte) (Encryptor, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("empty passphrase")
	}
	key := pbkdf2.Key([]byte(passphrase), salt, 10000, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &aesEncryptor{aead}, nil
}

func (e *aesEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	ns := e.aead.NonceSize()
	buf := make([]byte, ns, ns+len(plaintext)+e.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, err
	}
	return e.aead.Seal(buf, buf[:ns], plaintext, nil), nil
}

func (e *aesEncryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	ns := e.aead.NonceSize()
	if len(ciphertext) < ns+e.aead.Overhead() {
		return nil, fmt.Errorf("misformed ciphertext: %d bytes", len(ciphertext))
	}
	return e.aead.Open(nil, ciphertext[:ns], ciphertext[ns:], nil)
}
