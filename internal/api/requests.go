// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/kinograph/kinograph/internal/validation"
)

// maxBodyBytes bounds request bodies; every accepted body is small JSON.
const maxBodyBytes = 1 << 20

// searchParams are the query parameters of GET /movies/search.
type searchParams struct {
	Query string `validate:"required,min=1,max=500"`
	Mode  string `validate:"omitempty,oneof=auto title semantic"`
}

// similarTextRequest is the body of POST /movies/similar-text.
type similarTextRequest struct {
	Overview            string   `json:"overview" validate:"required,min=1,max=5000"`
	Genres              []string `json:"genres" validate:"omitempty,max=20"`
	ProductionCompanies []string `json:"production_companies" validate:"omitempty,max=20"`
	K                   int      `json:"k" validate:"omitempty,gte=1,lte=100"`
}

// registerRequest is the body of POST /auth/register.
type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// loginRequest is the body of POST /auth/login.
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// decodeAndValidate decodes a JSON body into dst and runs struct
// validation, writing the error response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer io.Copy(io.Discard, body) //nolint:errcheck

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		respondErrorCode(w, r, http.StatusBadRequest, "INVALID_REQUEST", "Request body must be valid JSON")
		return false
	}
	if err := validation.ValidateStruct(dst); err != nil {
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			respondError(w, r, http.StatusBadRequest, verr.ToAPIError())
		} else {
			respondErrorCode(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed")
		}
		return false
	}
	return true
}

// validateParams validates a query-parameter struct, writing the error
// response itself on failure.
func validateParams(w http.ResponseWriter, r *http.Request, params interface{}) bool {
	if err := validation.ValidateStruct(params); err != nil {
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			respondError(w, r, http.StatusBadRequest, verr.ToAPIError())
		} else {
			respondErrorCode(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed")
		}
		return false
	}
	return true
}
