package pathmatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"*", "/anything", true},
		{"**", "/anything/deep/path", true},
		{"/api/*", "/api/v1/ping", true},
		{"/api/*", "/API/v1/ping", true},
		{"/api/*", "/other", false},
		{"/api/**", "/api/v1/ping", true},
		{"/api/users", "/api/users", true},
		{"/api/users", "/API/USERS", true},
		{"/api/users", "/api/users/1", false},
		{"/slow", "/slow?x=1", true},
		{"", "/anything", false},
		{"/api/users", "", false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Match(c.pattern, c.path), "pattern=%q path=%q", c.pattern, c.path)
	}
}
