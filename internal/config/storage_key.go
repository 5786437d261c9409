package config

import (
	"fmt"
)

type StorageKeyStruct struct {
	AccessToken string
	User        string
	Language    string
	LastResult  string
}

// LastResultKey returns the result-store key scoped to a user.
// Anonymous attempts share the bare key.
func (k *StorageKeyStruct) LastResultKey(userID string) string {
	if userID == "" {
		return k.LastResult
	}
	return fmt.Sprintf("%s:%s", k.LastResult, userID)
}

var StorageKey = &StorageKeyStruct{
	AccessToken: "qp_access_token",
	User:        "qp_user",
	Language:    "qp_language",
	LastResult:  "qp_last_result",
}
