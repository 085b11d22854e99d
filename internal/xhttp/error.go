package xhttp

import "net/http"

func Error(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}

// Status writes a bare status line with no body.
func Status(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}
