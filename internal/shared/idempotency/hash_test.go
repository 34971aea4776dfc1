package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type HashSuite struct{ suite.Suite }

func (s *HashSuite) TestGenerateContentHashIgnoresKeyOrder() {
	first, err := GenerateContentHash(map[string]any{"a": 1, "b": map[string]any{"x": "y", "z": 2}})
	require.NoError(s.T(), err)

	second, err := GenerateContentHash(map[string]any{"b": map[string]any{"z": 2, "x": "y"}, "a": 1})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), first, second)
	assert.Len(s.T(), first, 64)
}

func (s *HashSuite) TestGenerateContentHashRejectsUnencodable() {
	_, err := GenerateContentHash(map[string]any{"fn": func() {}})
	require.Error(s.T(), err)
	assert.ErrorContains(s.T(), err, "failed to encode payload")
}

func (s *HashSuite) TestRequestHash_TableDriven() {
	base := RequestHash("POST", "/api/v1/tasks", "alice", []byte(`{"name":"send_email","args":[1]}`), map[string][]string{
		"Content-Type": {"application/json"},
	})

	tests := []struct {
		name    string
		method  string
		path    string
		userID  string
		body    string
		headers map[string][]string
		same    bool
	}{
		{
			name:    "reordered json body",
			method:  "POST",
			path:    "/api/v1/tasks",
			userID:  "alice",
			body:    `{"args":[1],  "name":"send_email"}`,
			headers: map[string][]string{"Content-Type": {"application/json"}},
			same:    true,
		},
		{
			name:   "volatile headers ignored",
			method: "post",
			path:   "/api/v1/tasks",
			userID: "alice",
			body:   `{"name":"send_email","args":[1]}`,
			headers: map[string][]string{
				"Content-Type":  {"application/json"},
				"X-Request-ID":  {"abc"},
				"User-Agent":    {"curl/8"},
				"Authorization": {"Bearer token"},
				"Date":          {"Mon, 19 Oct 2026 10:00:00 GMT"},
			},
			same: true,
		},
		{
			name:    "different body",
			method:  "POST",
			path:    "/api/v1/tasks",
			userID:  "alice",
			body:    `{"name":"send_email","args":[2]}`,
			headers: map[string][]string{"Content-Type": {"application/json"}},
		},
		{
			name:    "different path",
			method:  "POST",
			path:    "/api/v1/other",
			userID:  "alice",
			body:    `{"name":"send_email","args":[1]}`,
			headers: map[string][]string{"Content-Type": {"application/json"}},
		},
		{
			name:    "different caller",
			method:  "POST",
			path:    "/api/v1/tasks",
			userID:  "bob",
			body:    `{"name":"send_email","args":[1]}`,
			headers: map[string][]string{"Content-Type": {"application/json"}},
		},
		{
			name:    "different stable header",
			method:  "POST",
			path:    "/api/v1/tasks",
			userID:  "alice",
			body:    `{"name":"send_email","args":[1]}`,
			headers: map[string][]string{"Content-Type": {"text/plain"}},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			got := RequestHash(tc.method, tc.path, tc.userID, []byte(tc.body), tc.headers)
			if tc.same {
				assert.Equal(s.T(), base, got)
				return
			}
			assert.NotEqual(s.T(), base, got)
		})
	}
}

func (s *HashSuite) TestRequestHashAcceptsNonJSONBody() {
	first := RequestHash("PUT", "/upload", "", []byte("plain text"), nil)
	second := RequestHash("PUT", "/upload", "", []byte("plain text"), nil)
	third := RequestHash("PUT", "/upload", "", []byte("other text"), nil)

	assert.Equal(s.T(), first, second)
	assert.NotEqual(s.T(), first, third)
}

func (s *HashSuite) TestRequestScope() {
	assert.Equal(s.T(), "POST /api/v1/tasks", RequestScope("post", " /api/v1/tasks ", ""))
	assert.Equal(s.T(), "POST /api/v1/tasks user:alice", RequestScope("POST", "/api/v1/tasks", "alice"))
	assert.NotEqual(s.T(), RequestScope("POST", "/api/v1/tasks", "alice"), RequestScope("POST", "/api/v1/tasks", "bob"))
}

func (s *HashSuite) TestTaskHash() {
	withNil, err := TaskHash("send_email", nil, nil)
	require.NoError(s.T(), err)
	withEmpty, err := TaskHash("send_email", []any{}, map[string]any{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), withNil, withEmpty)

	other, err := TaskHash("send_sms", nil, nil)
	require.NoError(s.T(), err)
	assert.NotEqual(s.T(), withNil, other)

	withKwargs, err := TaskHash("send_email", []any{"a@example.com"}, map[string]any{"subject": "hi", "retry": 1})
	require.NoError(s.T(), err)
	reordered, err := TaskHash("send_email", []any{"a@example.com"}, map[string]any{"retry": 1, "subject": "hi"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), withKwargs, reordered)
}

func TestHashSuite(t *testing.T) {
	suite.Run(t, new(HashSuite))
}
