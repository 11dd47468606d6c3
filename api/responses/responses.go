package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/angelmondragon/gymdesk-backend/pkg/errors"
	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
)

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteCreated(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusCreated, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(context.Background(), nil, w, status, SuccessEnvelope{Data: data})
}

// WriteError maps err onto the error envelope. Untyped errors become
// INTERNAL_ERROR with the public message only; 5xx errors are logged.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if meta.HTTPStatus < http.StatusInternalServerError {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := ErrorEnvelope{Error: APIError{Code: string(typed.Code()), Message: msg}}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if meta.HTTPStatus >= http.StatusInternalServerError {
		logg.Error(logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "request.error", err)
	} else {
		logg.Debug(logg.WithField(ctx, "error_code", string(typed.Code())), "request.rejected")
	}

	writeJSON(ctx, logg, w, meta.HTTPStatus, payload)
}

func writeJSON(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logg.Error(ctx, "failed to encode response", err)
	}
}
