package idempotency

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

var volatileHeaders = map[string]struct{}{
	"date":            {},
	"timestamp":       {},
	"x-request-id":    {},
	"x-trace-id":      {},
	"user-agent":      {},
	"accept-encoding": {},
	"connection":      {},
	"authorization":   {},
	"content-length":  {},
}

// GenerateContentHash hashes the canonical JSON form of payload. Map keys are
// sorted, so logically equal payloads hash equally regardless of key order.
func GenerateContentHash(payload any) (string, error) {
	canonical, err := canonicalJSON(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// RequestHash covers method, path, the caller, body and the non-volatile
// headers. Credentials are left out so a refreshed token hashes the same.
func RequestHash(method, path, userID string, body []byte, headers map[string][]string) string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		lowered := strings.ToLower(name)
		if _, skip := volatileHeaders[lowered]; skip {
			continue
		}
		filtered[lowered] = strings.Join(values, ",")
	}

	var decodedBody any = string(body)
	if len(bytes.TrimSpace(body)) > 0 {
		var generic any
		decoder := json.NewDecoder(bytes.NewReader(body))
		decoder.UseNumber()
		if err := decoder.Decode(&generic); err == nil && !decoder.More() {
			decodedBody = generic
		}
	}

	hash, err := GenerateContentHash(map[string]any{
		"method":  strings.ToUpper(method),
		"path":    path,
		"user_id": strings.TrimSpace(userID),
		"body":    decodedBody,
		"headers": filtered,
	})
	if err != nil {
		sum := sha256.Sum256(append([]byte(strings.ToUpper(method)+"\n"+path+"\n"+userID+"\n"), body...))
		return hex.EncodeToString(sum[:])
	}
	return hash
}

// TaskHash covers the task name, positional args and kwargs. Callers drop the
// idempotency key from kwargs before hashing.
func TaskHash(taskName string, args []any, kwargs map[string]any) (string, error) {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return GenerateContentHash(map[string]any{
		"task_name": taskName,
		"args":      args,
		"kwargs":    kwargs,
	})
}

func canonicalJSON(payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("idempotency: failed to encode payload: %w", err)
	}

	var generic any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return nil, fmt.Errorf("idempotency: failed to normalize payload: %w", err)
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("idempotency: failed to encode canonical payload: %w", err)
	}
	return canonical, nil
}
