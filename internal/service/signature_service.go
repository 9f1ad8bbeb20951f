package service

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"strconv"
	"strings"
)

// HMACSignatureService implements ports.SignatureService using HMAC-SHA1.
type HMACSignatureService struct{}

// NewHMACSignatureService creates a new HMAC-SHA1 signature service.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign computes HMAC-SHA1 of the canonical string using secret.
// Returns the standard base64 encoding of the raw digest.
func (s *HMACSignatureService) Sign(tokenKey string, timestamp int64, nonce string, secret string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(s.BuildCanonicalString(tokenKey, timestamp, nonce)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature in constant time.
func (s *HMACSignatureService) Verify(tokenKey string, timestamp int64, nonce string, secret string, signature string) bool {
	expected := s.Sign(tokenKey, timestamp, nonce, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// BuildCanonicalString constructs the string to sign.
// Format: TOKEN_KEY\nTIMESTAMP\nNONCE\n (trailing newline included)
func (s *HMACSignatureService) BuildCanonicalString(tokenKey string, timestamp int64, nonce string) string {
	var b strings.Builder
	b.WriteString(tokenKey)
	b.WriteByte('\n')
	b.WriteString(strconv.FormatInt(timestamp, 10))
	b.WriteByte('\n')
	b.WriteString(nonce)
	b.WriteByte('\n')
	return b.String()
}
