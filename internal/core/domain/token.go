package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// AuthScheme prefixes every Authorization header sent to the Connect server.
const AuthScheme = "X_JP_Auth"

// Token is the long-lived access token issued to the store.
// Secret has the form "<token key>.<token secret>".
type Token struct {
	Key            string `json:"key"`
	Secret         string `json:"secret"`
	ExternalUserID int64  `json:"external_user_id"`
}

// SigningContext holds the per-request values a signature is computed over.
type SigningContext struct {
	TokenKey  string
	Timestamp int64 // Unix seconds, server-adjusted
	Nonce     string
	TimeDiff  int64 // Seconds between local and server clock
}

// LocalTime returns the timestamp translated back to the local clock.
func (c SigningContext) LocalTime() int64 {
	return c.Timestamp - c.TimeDiff
}

// AuthorizationHeader is the signed credential attached to one request.
type AuthorizationHeader struct {
	Token     string
	Timestamp int64
	Nonce     string
	Signature string
}

// String renders the header value:
// X_JP_Auth token="k:1:7" timestamp="..." nonce="..." signature="...".
func (h AuthorizationHeader) String() string {
	return fmt.Sprintf(`%s token="%s" timestamp="%d" nonce="%s" signature="%s"`,
		AuthScheme, h.Token, h.Timestamp, h.Nonce, h.Signature)
}

// ParseAuthorizationHeader is the inverse of AuthorizationHeader.String.
func ParseAuthorizationHeader(value string) (*AuthorizationHeader, error) {
	rest, ok := strings.CutPrefix(value, AuthScheme+" ")
	if !ok {
		return nil, fmt.Errorf("authorization scheme is not %s", AuthScheme)
	}

	fields := make(map[string]string, 4)
	for _, piece := range strings.Fields(rest) {
		name, quoted, found := strings.Cut(piece, "=")
		if !found || len(quoted) < 2 || quoted[0] != '"' || quoted[len(quoted)-1] != '"' {
			return nil, fmt.Errorf("malformed authorization field %q", piece)
		}
		fields[name] = quoted[1 : len(quoted)-1]
	}

	for _, name := range []string{"token", "timestamp", "nonce", "signature"} {
		if fields[name] == "" {
			return nil, fmt.Errorf("authorization field %q is missing", name)
		}
	}

	ts, err := strconv.ParseInt(fields["timestamp"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing authorization timestamp: %w", err)
	}

	return &AuthorizationHeader{
		Token:     fields["token"],
		Timestamp: ts,
		Nonce:     fields["nonce"],
		Signature: fields["signature"],
	}, nil
}
