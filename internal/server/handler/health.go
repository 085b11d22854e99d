package handler

import (
	"net/http"

	"github.com/garrettladley/slackgate/internal/version"
	"github.com/garrettladley/slackgate/internal/xhttp"
)

type health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	xhttp.WriteOK(w, health{Status: "ok", Version: version.Get()})
}
