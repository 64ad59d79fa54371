package dto

import (
	cryptoDomain "github.com/allisson/compvault/internal/crypto/domain"
)

// BatchDecryptResponse holds one result per requested envelope, in request order.
type BatchDecryptResponse struct {
	Results   []cryptoDomain.DecryptionResult `json:"results"`
	Succeeded int                             `json:"succeeded"`
	Failed    int                             `json:"failed"`
}

// MapResultsToBatchResponse counts outcomes and wraps the results.
func MapResultsToBatchResponse(results []cryptoDomain.DecryptionResult) BatchDecryptResponse {
	response := BatchDecryptResponse{Results: results}
	if response.Results == nil {
		response.Results = []cryptoDomain.DecryptionResult{}
	}
	for _, result := range results {
		if result.Success {
			response.Succeeded++
		} else {
			response.Failed++
		}
	}
	return response
}
