package http

import (
	"errors"
	"net/http"

	"github.com/marine14f/geminipwa-sub000/internal/adapter"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/service"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided: http.StatusBadRequest,
	adapter.ErrInvalidKey:          http.StatusBadRequest,
	adapter.ErrBlobNotFound:        http.StatusNotFound,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError logs err and answers with its mapped status. Internal errors
// are not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, fn string, err error) {
	status := statusFromError(err)
	log := logger.FromRequest(r)

	if status == http.StatusInternalServerError {
		log.Err(err).Str("func", fn).Send()
		http.Error(w, http.StatusText(status), status)
		return
	}

	log.Debug().Err(err).Str("func", fn).Int("status", status).Send()
	http.Error(w, err.Error(), status)
}
