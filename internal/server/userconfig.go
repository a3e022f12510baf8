package server

import (
	"context"
	"errors"

	"tubio/internal/session"
	"tubio/internal/usercfg"
)

var errSessionExpired = errors.New("session expired")

// resolveUserConfig turns the config path segment into a user config.
// A 32-hex segment names a server-side session and is read anonymously
// (which renews its sliding expiry); anything else is a self-contained
// config token.
func (s *Server) resolveUserConfig(ctx context.Context, raw string) (*usercfg.Config, error) {
	if session.ValidID(raw) && s.store != nil {
		sess, err := s.store.Read(ctx, raw, "")
		if err != nil {
			if errors.Is(err, session.ErrExpired) {
				return nil, errSessionExpired
			}
			return nil, err
		}
		return usercfg.Decode(sess.Config)
	}
	return usercfg.Decode(raw)
}
