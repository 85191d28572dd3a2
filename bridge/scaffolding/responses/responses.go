// Package responses provides the standard response envelopes shared by the
// repository bridges.
package responses

import (
	"encoding/json"
	"net/http"
)

// CodeResponse provides a standard response with code and message
type CodeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewCodeResponse(code, message string) CodeResponse {
	return CodeResponse{Code: code, Message: message}
}

func (c CodeResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(c)
	return data, "application/json", err
}

// RecordResponse wraps a single record
type RecordResponse[T any] struct {
	Record T `json:"record"`
}

func NewRecordResponse[T any](record T) RecordResponse[T] {
	return RecordResponse[T]{Record: record}
}

func (r RecordResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r)
	return data, "application/json", err
}

// CreatedResponse wraps a single record and answers 201.
type CreatedResponse[T any] struct {
	RecordResponse[T]
}

func NewCreatedResponse[T any](record T) CreatedResponse[T] {
	return CreatedResponse[T]{RecordResponse[T]{Record: record}}
}

func (c CreatedResponse[T]) HTTPStatus() int {
	return http.StatusCreated
}

// ListResponse wraps a collection of records with its count.
type ListResponse[T any] struct {
	Records []T `json:"records"`
	Count   int `json:"count"`
}

func NewListResponse[T any](records []T) ListResponse[T] {
	return ListResponse[T]{Records: records, Count: len(records)}
}

func (l ListResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(l)
	return data, "application/json", err
}
