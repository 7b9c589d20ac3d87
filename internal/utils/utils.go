package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	internal_errors "github.com/openaudit/openaudit/internal/errors"
	"github.com/openaudit/openaudit/internal/logger"
)

// errorEnvelope is the failure payload every endpoint writes: a stable
// numeric code plus a client-safe message.
type errorEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func WriteError(w http.ResponseWriter, err error) {
	status, code := internal_errors.StatusAndCode(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Log.Error("request failed", "error", err)
		message = "Unknown Internal Error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorEnvelope{Code: code, Message: message})
}

func WriteJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func WriteJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		return &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400}
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(body); err != nil {
		return &internal_errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: 400}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		return &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: 400}
	}
	return nil
}

// GetIP extracts the real client IP from RemoteAddr.
// Does NOT trust X-Real-IP or X-Forwarded-For headers.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	return ip, nil
}

// GenerateCode returns a random alphanumeric code of the given length,
// used for email confirmation and password reset.
func GenerateCode(length int) string {
	code := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	if length > len(code) {
		length = len(code)
	}
	return code[:length]
}

// GenerateSessionToken returns a fresh session token. Tokens are never
// derived from or reused across sign-ins.
func GenerateSessionToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

// GenerateDocumentId returns a new alphanumeric document id.
func GenerateDocumentId() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
