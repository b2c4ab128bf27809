package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/i18n"
	"github.com/diewo77/go-printshop/internal/apperr"
	"github.com/diewo77/go-printshop/internal/services"
	"go.uber.org/zap"
)

// writeError maps service errors to a JSON error response. Domain errors keep
// their details; anything else is logged and answered with 500.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	lang := i18n.LangFromContext(r.Context())
	if errors.Is(err, services.ErrInvalidCredentials) {
		httpx.JSONErrorMessage(w, http.StatusUnauthorized, "invalid_credentials", i18n.T(lang, "invalid_credentials"), nil)
		return
	}
	e, ok := apperr.As(err)
	if !ok {
		log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", i18n.T(lang, "internal_error"), nil)
		return
	}
	switch e.Kind {
	case apperr.KindNotFound:
		code := "not_found"
		if e.Entity != "" {
			code = e.Entity + "_not_found"
		}
		details := map[string]any{"entity": e.Entity}
		if e.Name != "" {
			details["name"] = e.Name
		} else if e.ID != nil {
			details["id"] = e.ID
		}
		httpx.JSONErrorMessage(w, http.StatusNotFound, code, i18n.T(lang, code), details)
	case apperr.KindInsufficientStock:
		httpx.JSONErrorMessage(w, http.StatusConflict, string(e.Kind), i18n.T(lang, string(e.Kind)), map[string]any{
			"entity":    e.Entity,
			"id":        e.ID,
			"name":      e.Name,
			"requested": e.Requested,
			"available": e.Available,
		})
	case apperr.KindConflict:
		if e.Entity == "material" && e.References > 0 {
			httpx.JSONErrorMessage(w, http.StatusConflict, "material_in_use", i18n.T(lang, "material_in_use"),
				map[string]any{"id": e.ID, "references": e.References})
			return
		}
		httpx.JSONErrorMessage(w, http.StatusConflict, string(e.Kind), e.Error(), map[string]any{"entity": e.Entity})
	case apperr.KindValidation:
		httpx.JSONErrorMessage(w, http.StatusBadRequest, string(e.Kind), i18n.T(lang, string(e.Kind)), translate(lang, e.Violations))
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// translate turns field codes into messages in lang.
func translate(lang string, v map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(v))
	for field, code := range v {
		out[field] = map[string]string{"code": code, "message": i18n.T(lang, code)}
	}
	return out
}

func badJSON(w http.ResponseWriter, r *http.Request) {
	lang := i18n.LangFromContext(r.Context())
	httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", i18n.T(lang, "invalid_json"), nil)
}

func badID(w http.ResponseWriter, r *http.Request) {
	lang := i18n.LangFromContext(r.Context())
	httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_id", i18n.T(lang, "invalid_id"), nil)
}
