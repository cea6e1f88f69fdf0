package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tartampluch/go-ivu-ics/internal/config"
	"github.com/zalando/go-keyring"
)

// LookupPassword returns the portal password stored for user in the OS keyring.
// A missing entry is not an error: the fetch proceeds without a password.
func LookupPassword(user string) string {
	if user == "" {
		return ""
	}
	pass, err := keyring.Get(config.KeyringService, user)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, keyring.ErrNotFound) {
			level = slog.LevelDebug
		}
		slog.Log(context.Background(), level, config.MsgPassFail,
			config.LogKeyComponent, config.CompKeyring,
			config.LogKeyUser, user,
			config.LogKeyError, err,
		)
		return ""
	}
	return pass
}

// StorePassword saves the portal password for user in the OS keyring.
func StorePassword(user, pass string) error {
	if user == "" {
		return errors.New(config.ErrKeyringUser)
	}
	return keyring.Set(config.KeyringService, user, pass)
}
