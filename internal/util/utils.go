package util

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

func DecodeJSONBody[T any](r *http.Request) (T, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("read body error: %w", err)
	}

	var data T
	if err := json.Unmarshal(body, &data); err != nil {
		var zero T
		return zero, fmt.Errorf("json unmarshal error: %w", err)
	}
	return data, nil
}

func DecodeJSONBodyResponse[T any](r *http.Response) (T, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("read body error: %w", err)
	}

	var data T
	if err := json.Unmarshal(body, &data); err != nil {
		var zero T
		return zero, fmt.Errorf("json unmarshal error: %w", err)
	}
	return data, nil
}

func WriteJSONResponse[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// WriteError writes the standard {"code","message"} error body.
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	WriteJSONResponse(w, status, models.ErrorResponse{Code: code, Message: message})
}
