package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/Veraticus/kantoor/internal/common"
)

// GenericMessage is shown when the backend gives no usable explanation.
const GenericMessage = "Er is een fout opgetreden"

// CodeNetwork marks failures where no HTTP response was received.
const CodeNetwork = "network"

// Error is returned for every failed backend call.
// Status is zero for transport failures.
type Error struct {
	Fields  map[string][]string
	cause   error
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is maps HTTP statuses onto the common sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case common.ErrNotFound:
		return e.Status == http.StatusNotFound
	case common.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case common.ErrConflict:
		return e.Status == http.StatusConflict
	case common.ErrValidation:
		return e.Status == http.StatusBadRequest
	case common.ErrRateLimit:
		return e.Status == http.StatusTooManyRequests
	}
	return false
}

// Message extracts the user-facing text of any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	var validationErr *common.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	return GenericMessage
}

func networkError(err error) *Error {
	return &Error{
		Code:    CodeNetwork,
		Message: GenericMessage,
		cause:   err,
	}
}

// decodeError builds an Error from a non-2xx response body.
// The message comes from "detail", then "non_field_errors", then the first field error.
func decodeError(status int, body []byte) *Error {
	apiErr := &Error{
		Status:  status,
		Code:    codeForStatus(status),
		Message: GenericMessage,
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return apiErr
	}

	if code, ok := raw["code"].(string); ok && code != "" {
		apiErr.Code = code
	}
	if detail, ok := raw["detail"].(string); ok && detail != "" {
		apiErr.Message = detail
		return apiErr
	}

	apiErr.Fields = make(map[string][]string)
	for key, value := range raw {
		if key == "code" || key == "detail" {
			continue
		}
		if messages := stringList(value); len(messages) > 0 {
			apiErr.Fields[key] = messages
		}
	}

	if messages := apiErr.Fields["non_field_errors"]; len(messages) > 0 {
		apiErr.Message = messages[0]
		return apiErr
	}

	keys := make([]string, 0, len(apiErr.Fields))
	for key := range apiErr.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		apiErr.Message = fmt.Sprintf("%s: %s", keys[0], apiErr.Fields[keys[0]][0])
	}

	return apiErr
}

func stringList(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "invalid"
	case status == http.StatusUnauthorized:
		return "not_authenticated"
	case status == http.StatusForbidden:
		return "permission_denied"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "conflict"
	case status == http.StatusRequestEntityTooLarge:
		return "too_large"
	case status == http.StatusTooManyRequests:
		return "throttled"
	case status >= 500:
		return "server_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}
