package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := New()
	assert.False(t, r.IsHelperAuthorized("alice", "router"))

	r.Authorize("alice", "router")
	assert.True(t, r.IsHelperAuthorized("alice", "router"))
	assert.False(t, r.IsHelperAuthorized("bob", "router"))
	assert.False(t, r.IsHelperAuthorized("router", "alice"))

	r.Revoke("alice", "router")
	r.Revoke("carol", "router")
	assert.False(t, r.IsHelperAuthorized("alice", "router"))
}
