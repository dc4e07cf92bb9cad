package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/RealZimboGuy/approvalflow/internal/engine"
	"github.com/RealZimboGuy/approvalflow/internal/util"
)

const (
	codeUnauthorized     = "UNAUTHORIZED"
	codeForbidden        = string(engine.KindForbidden)
	codeBadRequest       = string(engine.KindBadRequest)
	codeNotFound         = string(engine.KindNotFound)
	codeConflict         = string(engine.KindConflict)
	codeStoreUnavailable = string(engine.KindStoreUnavailable)
)

var statusByKind = map[engine.ErrorKind]int{
	engine.KindNotFound:          http.StatusNotFound,
	engine.KindInvalidStatus:     http.StatusBadRequest,
	engine.KindBadRequest:        http.StatusBadRequest,
	engine.KindForbidden:         http.StatusForbidden,
	engine.KindIllegalTransition: http.StatusUnprocessableEntity,
	engine.KindConflict:          http.StatusConflict,
	engine.KindStoreUnavailable:  http.StatusServiceUnavailable,
}

// writeServiceError maps lifecycle errors onto HTTP. Anything else is treated
// as a store failure and its detail only goes to the log.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var e *engine.Error
	if errors.As(err, &e) {
		util.WriteError(w, statusByKind[e.Kind], string(e.Kind), e.Message)
		return
	}
	slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
	util.WriteError(w, http.StatusServiceUnavailable, codeStoreUnavailable, "service temporarily unavailable")
}

func writeForbidden(w http.ResponseWriter) {
	util.WriteError(w, http.StatusForbidden, codeForbidden, "not permitted")
}
