package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPrefix(t *testing.T) {
	tests := []struct {
		raw        string
		wantUser   string
		wantPrefix string
	}{
		{raw: "mydev", wantUser: "", wantPrefix: "mydev"},
		{raw: "ubuntu@mydev", wantUser: "ubuntu@", wantPrefix: "mydev"},
		{raw: "ubuntu@", wantUser: "ubuntu@", wantPrefix: ""},
		{raw: "", wantUser: "", wantPrefix: ""},
		{raw: "a@b@c", wantUser: "a@", wantPrefix: "b@c"},
	}

	for _, tt := range tests {
		user, prefix := splitPrefix(tt.raw)
		assert.Equal(t, tt.wantUser, user, tt.raw)
		assert.Equal(t, tt.wantPrefix, prefix, tt.raw)
	}
}
