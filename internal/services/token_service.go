package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

var (
	ErrCodeExpired = errors.New("code expired")
	ErrCodeInvalid = errors.New("code invalid")
)

// codeTTL — verification and reset codes live exactly one hour.
const codeTTL = time.Hour

const alnumCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type TokenService interface {
	NumericCode() (string, error)
	AlphanumericCode() (string, error)
	CodeExpiry(now time.Time) time.Time
}

type tokenService struct{}

func NewTokenService() TokenService {
	return &tokenService{}
}

// NumericCode returns a 6-digit code for email verification, drawn
// from crypto/rand.
func (s *tokenService) NumericCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// AlphanumericCode returns a 6-char [0-9A-Z] code for password resets.
func (s *tokenService) AlphanumericCode() (string, error) {
	buf := make([]byte, 6)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alnumCharset))))
		if err != nil {
			return "", err
		}
		buf[i] = alnumCharset[n.Int64()]
	}
	return string(buf), nil
}

func (s *tokenService) CodeExpiry(now time.Time) time.Time {
	return now.Add(codeTTL)
}

// CodeExpired applies the uniform expiry rule: a code valid until
// expiresAt is expired from that instant on (now == expiresAt counts
// as expired).
func CodeExpired(now, expiresAt time.Time) bool {
	return !now.Before(expiresAt)
}
