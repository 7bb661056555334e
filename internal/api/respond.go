package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"lakehouse/internal/domain"
)

const maxJSONBodyBytes = 4 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON body into dst. Numbers decode as json.Number so
// integer parameters keep their exact value.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBodyBytes+1))
	if err != nil {
		return domain.ErrValidation("invalid input: %v", err)
	}
	if len(body) > maxJSONBodyBytes {
		return domain.ErrValidation("invalid input: request body too large")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.ErrValidation("invalid input: request body is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return domain.ErrValidation("invalid input: %v", err)
	}
	return nil
}

// tenantFor returns the tenant of a list or create request: the tenant_id
// query parameter, else the caller's tenant claim.
func tenantFor(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if t := r.URL.Query().Get("tenant_id"); t != "" {
		return t
	}
	if p, ok := domain.PrincipalFromContext(r.Context()); ok {
		return p.TenantID
	}
	return ""
}

type messageResponse struct {
	Message string `json:"message"`
}

func deleted(what string) messageResponse {
	return messageResponse{Message: fmt.Sprintf("%s deleted successfully", what)}
}
