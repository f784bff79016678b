package domain

import (
	"encoding/json"
	"time"
)

// AccessExpirySkew is subtracted from the access expiry so that a request
// started just before expiry does not race the server-side check.
const AccessExpirySkew = 30 * time.Second

// Credential is the access/refresh token pair and their absolute UTC expiries.
type Credential struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	TokenType        string
}

// AccessExpired reports whether now ≥ AccessExpiresAt − AccessExpirySkew.
func (c Credential) AccessExpired(now time.Time) bool {
	return !now.Before(c.AccessExpiresAt.Add(-AccessExpirySkew))
}

// RefreshExpired reports whether now ≥ RefreshExpiresAt.
func (c Credential) RefreshExpired(now time.Time) bool {
	return !now.Before(c.RefreshExpiresAt)
}

// credentialJSON is the token endpoint payload and the persisted blob format.
type credentialJSON struct {
	AccessToken           string `json:"access_token"`
	AccessTokenExpiresAt  string `json:"access_token_expires_at"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresAt string `json:"refresh_token_expires_at"`
	TokenType             string `json:"token_type"`
}

func (c Credential) MarshalJSON() ([]byte, error) {
	return json.Marshal(credentialJSON{
		AccessToken:           c.AccessToken,
		AccessTokenExpiresAt:  FormatServerTime(c.AccessExpiresAt),
		RefreshToken:          c.RefreshToken,
		RefreshTokenExpiresAt: FormatServerTime(c.RefreshExpiresAt),
		TokenType:             c.TokenType,
	})
}

// UnmarshalJSON normalises both expiry fields through ParseServerTime. A
// missing or unparsable expiry is left zero, which reads as already expired.
func (c *Credential) UnmarshalJSON(data []byte) error {
	var raw credentialJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Credential{
		AccessToken:  raw.AccessToken,
		RefreshToken: raw.RefreshToken,
		TokenType:    raw.TokenType,
	}
	if t, err := ParseServerTime(raw.AccessTokenExpiresAt); err == nil {
		c.AccessExpiresAt = t
	}
	if t, err := ParseServerTime(raw.RefreshTokenExpiresAt); err == nil {
		c.RefreshExpiresAt = t
	}
	return nil
}
