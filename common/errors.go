package common

import (
	"encoding/json"
	"go-auth-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

// AppError is the structured failure returned by handlers. Only the detail
// message is serialized; the wrapped internal error goes to the log.
type AppError struct {
	Code   int    `json:"-"`
	Detail string `json:"detail"`
	Err    error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Detail
}

func NewAppError(code int, detail string, err error) *AppError {
	return &AppError{
		Code:   code,
		Detail: detail,
		Err:    err,
	}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Detail)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}
