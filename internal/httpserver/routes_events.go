package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// handleLogEvent is the receiving side of the event sink: it accepts any JSON
// object carrying an "action" and writes it to the log.
//
//	non-POST        → 405 {"error":"Method Not Allowed"}
//	missing action  → 400 {"error":"Missing action"}
//	otherwise       → 200 {"ok":true}
func handleLogEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		body = nil
	}
	action, _ := body["action"].(string)
	if action == "" {
		writeError(w, http.StatusBadRequest, "Missing action", "")
		return
	}

	log.Info().Fields(body).Msg("event received")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
