package security

import (
	"crypto/rand"
	"errors"
	"io"
)

const TemporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

var (
	errNegativeLength = errors.New("length must be non-negative")
	errBadAlphabet    = errors.New("alphabet must hold between 1 and 256 bytes")
)

// RandomString draws length characters from alphabet using crypto/rand.
// Bytes above the largest multiple of len(alphabet) are rejected so every
// character is equally likely.
func RandomString(length int, alphabet string) (string, error) {
	return randomStringFrom(rand.Reader, length, alphabet)
}

func TemporaryPassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}
	return RandomString(length, TemporaryPasswordAlphabet)
}

func randomStringFrom(source io.Reader, length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 || len(alphabet) > 256 {
		return "", errBadAlphabet
	}

	ceiling := 256 - (256 % len(alphabet))
	value := make([]byte, 0, length)
	buffer := make([]byte, length)
	for len(value) < length {
		if _, err := io.ReadFull(source, buffer); err != nil {
			return "", err
		}
		for _, candidate := range buffer {
			if int(candidate) >= ceiling {
				continue
			}
			value = append(value, alphabet[int(candidate)%len(alphabet)])
			if len(value) == length {
				break
			}
		}
	}
	return string(value), nil
}
