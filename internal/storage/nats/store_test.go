package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "minifeed.user-likes", subject("minifeed:user-likes"))
	assert.Equal(t, "posts", subject("posts"))
}
