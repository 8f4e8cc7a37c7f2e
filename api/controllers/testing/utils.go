package testing

import (
	"bytes"
	"encoding/json"
	"github.com/alex-pricope/catch-the-mole/api/models"
	"github.com/gin-gonic/gin"
	"net/http/httptest"
)

// Response mirrors models.Envelope with the payload left raw.
type Response struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   models.ErrorKind `json:"error"`
	Message string           `json:"message"`
}

// PerformRequest Helper for performing requests in tests.
func PerformRequest(router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			panic("failed to marshal request body: " + err.Error())
		}
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

// As returns the fingerprint header of one caller.
func As(fingerprint string) map[string]string {
	return map[string]string{models.FingerprintHeader: fingerprint}
}

// Decode reads the envelope and, when data is non-nil, its payload.
func Decode(res *httptest.ResponseRecorder, data any) (Response, error) {
	var envelope Response
	if err := json.Unmarshal(res.Body.Bytes(), &envelope); err != nil {
		return envelope, err
	}
	if data != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, data); err != nil {
			return envelope, err
		}
	}
	return envelope, nil
}
