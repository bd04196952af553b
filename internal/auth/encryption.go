package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// magicHeader identifies an encrypted token file on disk.
	magicHeader = "CCTOKEN1"

	// Argon2id parameters per RFC 9106 recommendations.
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32

	saltLength = 32
)

// deriveKey derives an AES-256 key from the passphrase with Argon2id.
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

// encryptTokens seals plaintext with AES-256-GCM under a passphrase-derived
// key. Layout: magic || salt || nonce || ciphertext+tag.
func encryptTokens(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, len(magicHeader)+len(salt)+len(nonce)+len(sealed))
	out = append(out, magicHeader...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// decryptTokens reverses encryptTokens.
func decryptTokens(data []byte, passphrase string) ([]byte, error) {
	if len(data) < len(magicHeader)+saltLength {
		return nil, fmt.Errorf("token file too short")
	}
	if string(data[:len(magicHeader)]) != magicHeader {
		return nil, fmt.Errorf("token file is not encrypted")
	}
	data = data[len(magicHeader):]

	salt := data[:saltLength]
	data = data[saltLength:]

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	if len(data) < gcm.NonceSize() {
		return nil, fmt.Errorf("token file too short for nonce")
	}
	nonce := data[:gcm.NonceSize()]
	plaintext, err := gcm.Open(nil, nonce, data[gcm.NonceSize():], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt tokens (wrong passphrase or corrupted file): %w", err)
	}
	return plaintext, nil
}

// isEncrypted checks for the magic header.
func isEncrypted(data []byte) bool {
	return len(data) >= len(magicHeader) && string(data[:len(magicHeader)]) == magicHeader
}
