package server

import (
	"encoding/json"
	"io"
	"net/http"

	"tubio/internal/logging"
)

const maxEncryptBody = 1 << 20

// handleEncrypt seals the posted JSON body with the process key. The
// configuration page calls this before embedding credentials in a token.
func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEncryptBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read body")
		return
	}
	if !json.Valid(body) {
		s.writeError(w, http.StatusBadRequest, "body must be JSON")
		return
	}

	sealed, err := s.crypto.Encrypt(string(body))
	if err != nil {
		s.logger.Error("encrypt failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "encryption failed")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(sealed))
}
