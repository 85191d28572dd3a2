package errs_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jrazmi/formvault/bridge/scaffolding/errs"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code errs.ErrCode
		want int
	}{
		{errs.InvalidArgument, http.StatusBadRequest},
		{errs.NotFound, http.StatusNotFound},
		{errs.Conflict, http.StatusConflict},
		{errs.Unavailable, http.StatusServiceUnavailable},
		{errs.Internal, http.StatusInternalServerError},
		{errs.InternalOnlyLog, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			e := errs.Newf(tt.code, "boom")
			if got := e.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewCapturesCaller(t *testing.T) {
	e := errs.New(errs.NotFound, errors.New("template not found"))

	if !strings.Contains(e.FileName, "errs_test.go") {
		t.Errorf("FileName = %q, want the raising file", e.FileName)
	}
	if e.FuncName == "" {
		t.Error("FuncName should be captured")
	}
}

func TestEncodeHidesInternalDetails(t *testing.T) {
	e := errs.Newf(errs.Conflict, "column age is text, want double precision")

	data, contentType, err := e.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if contentType != "application/json" {
		t.Errorf("content type = %q", contentType)
	}

	var body map[string]string
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["code"] != "conflict" {
		t.Errorf("code = %q, want conflict", body["code"])
	}
	if _, ok := body["file_name"]; ok {
		t.Error("source location must not be exposed to callers")
	}
}

func TestGetError(t *testing.T) {
	appErr := errs.Newf(errs.NotFound, "gone")
	wrapped := fmt.Errorf("handling request: %w", appErr)

	if !errs.IsError(wrapped) {
		t.Error("IsError should see through wrapping")
	}
	if got := errs.GetError(wrapped); got.Code != errs.NotFound {
		t.Errorf("GetError code = %v, want NotFound", got.Code)
	}

	plain := errors.New("plain")
	if errs.IsError(plain) {
		t.Error("plain error is not an application error")
	}
	if got := errs.GetError(plain); got.Code != errs.Internal {
		t.Errorf("GetError on plain error = %v, want Internal", got.Code)
	}
}
