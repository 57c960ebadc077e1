// Copyright 2026 Rapid SCADA Agent contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cryptosupport implements the symmetric encryption used to
// transport session credentials between the administrator client and the
// Agent. It commits to AES-128-CBC with PKCS#7 padding (the 16-byte
// secret key mandated by spec fixes the AES key size); both ends must
// agree on this choice since the wire format is not self-describing.
package cryptosupport

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"github.com/gravitational/trace"
)

// SecretKeySize is the required length, in bytes, of the shared secret
// key used for both instance and password encryption.
const SecretKeySize = 16

// ValidateSecretKey checks that a decoded secret key has the required
// length, surfacing a clear configuration error otherwise.
func ValidateSecretKey(key []byte) error {
	if len(key) != SecretKeySize {
		return trace.BadParameter("secret key must be %d bytes, got %d", SecretKeySize, len(key))
	}
	return nil
}

// iv derives the initialization vector for a session from its 64-bit id:
// the little-endian encoding of the id, repeated and truncated to the
// cipher block length. This binds any ciphertext encrypted under this IV
// to the session that produced it.
func iv(sessionID uint64) []byte {
	var idBytes [8]byte
	binary.LittleEndian.PutUint64(idBytes[:], sessionID)

	out := make([]byte, aes.BlockSize)
	for i := range out {
		out[i] = idBytes[i%len(idBytes)]
	}
	return out
}

func pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(data, padding...)
}

func unpad(data []byte) ([]byte, error) {
	n := len(data)
	if n == 0 || n%aes.BlockSize != 0 {
		return nil, trace.BadParameter("ciphertext is not a multiple of the block size")
	}
	padLen := int(data[n-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > n {
		return nil, trace.BadParameter("invalid PKCS#7 padding")
	}
	for _, b := range data[n-padLen:] {
		if int(b) != padLen {
			return nil, trace.BadParameter("invalid PKCS#7 padding")
		}
	}
	return data[:n-padLen], nil
}

// Encrypt encrypts plain under secretKey using AES-128-CBC with the given
// initialization vector, which must be exactly aes.BlockSize bytes.
func Encrypt(plain, secretKey, ivBytes []byte) ([]byte, error) {
	if err := ValidateSecretKey(secretKey); err != nil {
		return nil, trace.Wrap(err)
	}
	if len(ivBytes) != aes.BlockSize {
		return nil, trace.BadParameter("iv must be %d bytes, got %d", aes.BlockSize, len(ivBytes))
	}

	block, err := aes.NewCipher(secretKey)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	padded := pad(plain, aes.BlockSize)
	cipherBytes := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, ivBytes)
	mode.CryptBlocks(cipherBytes, padded)
	return cipherBytes, nil
}

// Decrypt reverses Encrypt. It returns an error if the ciphertext length
// or padding is invalid.
func Decrypt(cipherBytes, secretKey, ivBytes []byte) ([]byte, error) {
	if err := ValidateSecretKey(secretKey); err != nil {
		return nil, trace.Wrap(err)
	}
	if len(ivBytes) != aes.BlockSize {
		return nil, trace.BadParameter("iv must be %d bytes, got %d", aes.BlockSize, len(ivBytes))
	}
	if len(cipherBytes) == 0 {
		return nil, trace.BadParameter("ciphertext is empty")
	}

	block, err := aes.NewCipher(secretKey)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	if len(cipherBytes)%aes.BlockSize != 0 {
		return nil, trace.BadParameter("ciphertext is not a multiple of the block size")
	}

	plainPadded := make([]byte, len(cipherBytes))
	mode := cipher.NewCBCDecrypter(block, ivBytes)
	mode.CryptBlocks(plainPadded, cipherBytes)

	return unpad(plainPadded)
}

// EncryptPassword encrypts a plaintext password for transport under a
// session id, deriving the IV from that id per spec.
func EncryptPassword(plain string, sessionID uint64, secretKey []byte) ([]byte, error) {
	out, err := Encrypt([]byte(plain), secretKey, iv(sessionID))
	return out, trace.Wrap(err)
}

// DecryptPassword decrypts a password previously produced by
// EncryptPassword for the same session id and key.
func DecryptPassword(cipherBytes []byte, sessionID uint64, secretKey []byte) (string, error) {
	plain, err := Decrypt(cipherBytes, secretKey, iv(sessionID))
	if err != nil {
		return "", trace.Wrap(err)
	}
	return string(plain), nil
}

// DecryptPasswordTolerant is the forgiving variant used by Login: any
// decryption failure yields an empty password instead of an error, since
// the RPC layer treats a malformed credential the same as a wrong one.
func DecryptPasswordTolerant(cipherBytes []byte, sessionID uint64, secretKey []byte) string {
	plain, err := DecryptPassword(cipherBytes, sessionID, secretKey)
	if err != nil {
		return ""
	}
	return plain
}
