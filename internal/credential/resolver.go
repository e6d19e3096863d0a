// Package credential decides which OpenAI API key a request actually uses:
// the user's personal key or the operator-wide key from the environment.
package credential

import "strings"

// SecretKeyPrefix is the provider's secret-key prefix. A key without it is
// treated as malformed regardless of where it came from.
const SecretKeyPrefix = "sk-"

// Source identifies where a credential comes from. The wire values match the
// original client contract: "user" for a personal key, "system" for the
// operator key.
type Source string

const (
	SourceUser   Source = "user"
	SourceSystem Source = "system"
	SourceNone   Source = "none"
)

// Info is the only serializable representation of credential state. It never
// contains a raw key, so handing it to a client can not leak a secret.
type Info struct {
	Source          Source `json:"source"`
	HasUserKey      bool   `json:"hasUserKey"`
	HasSystemKey    bool   `json:"hasSystemKey"`
	EffectiveSource Source `json:"effectiveSource"`
	HasValidKey     bool   `json:"hasValidKey"`
}

// IsWellFormed reports whether key is a usable credential: non-empty after
// trimming and carrying the provider prefix.
func IsWellFormed(key string) bool {
	trimmed := strings.TrimSpace(key)
	return trimmed != "" && strings.HasPrefix(trimmed, SecretKeyPrefix)
}

// Resolve picks the effective API key for one request.
//
// A user who prefers their personal key gets it only when it is well-formed;
// otherwise resolution falls back to the operator key. An empty result is not
// an error here; callers translate it into a domain error before calling the
// provider. Resolve is a pure function of its inputs and is recomputed on
// every request, because either key may change between calls.
func Resolve(preference Source, personalKey, operatorKey string) (string, Info) {
	info := Info{
		Source:          preference,
		HasUserKey:      IsWellFormed(personalKey),
		HasSystemKey:    IsWellFormed(operatorKey),
		EffectiveSource: SourceNone,
	}

	if preference == SourceUser && info.HasUserKey {
		info.EffectiveSource = SourceUser
		info.HasValidKey = true
		return strings.TrimSpace(personalKey), info
	}

	if info.HasSystemKey {
		info.EffectiveSource = SourceSystem
		info.HasValidKey = true
		return strings.TrimSpace(operatorKey), info
	}

	return "", info
}
