package okx

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// APIError is an exchange-side rejection. SCode and SMsg carry the per-item
// status OKX attaches to order and account operations.
type APIError struct {
	HTTPStatus int
	Code       string
	Msg        string
	SCode      string
	SMsg       string
}

func (e *APIError) Error() string {
	switch {
	case e.SMsg != "":
		return e.SMsg
	case e.Msg != "":
		return e.Msg
	case e.HTTPStatus >= 400:
		return fmt.Sprintf("okx http %d (code %s)", e.HTTPStatus, e.Code)
	default:
		return fmt.Sprintf("okx error code %s", e.Code)
	}
}

// Mentions reports whether either exchange message contains s.
func (e *APIError) Mentions(s string) bool {
	return strings.Contains(e.Msg, s) || strings.Contains(e.SMsg, s)
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type itemStatus struct {
	SCode string `json:"sCode"`
	SMsg  string `json:"sMsg"`
}

// decodeEnvelope is the single place where raw response bytes are inspected.
func decodeEnvelope(status int, body []byte, target interface{}) error {
	var env envelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		if status >= 400 {
			return &APIError{HTTPStatus: status, Msg: strings.TrimSpace(string(body))}
		}
		return errors.Wrap(err, "decode okx envelope")
	}

	if env.Code != "0" {
		apiErr := &APIError{HTTPStatus: status, Code: env.Code, Msg: env.Msg}
		var items []itemStatus
		if len(env.Data) > 0 && sonic.Unmarshal(env.Data, &items) == nil && len(items) > 0 {
			apiErr.SCode = items[0].SCode
			apiErr.SMsg = items[0].SMsg
		}
		return apiErr
	}

	if target == nil || len(env.Data) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(env.Data, target); err != nil {
		return errors.Wrap(err, "decode okx data")
	}
	return nil
}
