package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pratik-mahalle/costengine/internal/pkg/errors"
	"github.com/pratik-mahalle/costengine/internal/pkg/logger"
	"github.com/pratik-mahalle/costengine/internal/pkg/utils"
)

// maxBodyBytes bounds request bodies carrying sample data
const maxBodyBytes = 32 << 20

// decodeJSON reads a JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.BadRequest("Invalid request body")
	}
	return nil
}

// respondError writes err as an error envelope, logging anything that is not a client error
func respondError(w http.ResponseWriter, log *logger.Logger, err error, msg string) {
	appErr := errors.AsAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.ErrorWithErr(err, msg)
	}
	utils.WriteError(w, appErr)
}
