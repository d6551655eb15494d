package utils

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response with status and sensible headers.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Raw writes an already encoded JSON document as is.
func Raw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

type ErrorBody struct {
	Error string `json:"error"`
}

type DetailBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

func ErrorDetail(w http.ResponseWriter, status int, msg, detail string) {
	JSON(w, status, DetailBody{Error: msg, Detail: detail})
}
