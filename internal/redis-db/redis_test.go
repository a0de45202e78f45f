package redis_db

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantAddr     string
		wantPassword string
	}{
		{
			name:     "docker style address",
			url:      "redis:6379",
			wantAddr: "redis:6379",
		},
		{
			name:     "url with scheme",
			url:      "redis://localhost:6379",
			wantAddr: "localhost:6379",
		},
		{
			name:         "password without username",
			url:          "redis://secret@some-host:6379",
			wantAddr:     "some-host:6379",
			wantPassword: "secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseRedisURL(tt.url)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantAddr, opts.Addr)
			assert.Equal(t, tt.wantPassword, opts.Password)
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client, err := NewRedisClient(mr.Addr())
	assert.NoError(t, err)
	assert.NotNil(t, client.Client())

	_, err = NewRedisClient("")
	assert.Error(t, err)
}
