package model

import "github.com/statustrack/backend/internal/pagination"

type ErrorResponse struct {
	Error string `json:"error"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type UserListResponse struct {
	Items []User          `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}

type StatusListResponse struct {
	Items []Status        `json:"items"`
	Meta  pagination.Meta `json:"meta"`
}
