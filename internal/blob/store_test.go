package blob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeys(t *testing.T) {
	hash := "ab12cd"
	assert.Equal(t, "i/ab12cd/original.jpg", OriginalKey(hash, "jpg"))
	assert.Equal(t, "i/ab12cd/thumb.webp", ThumbKey(hash))
}

func TestURL_TrimsTrailingSlash(t *testing.T) {
	s := &MinIOStore{publicURL: "http://localhost:9000/waverider-images"}
	assert.Equal(t,
		"http://localhost:9000/waverider-images/i/ab/original.jpg",
		s.URL(OriginalKey("ab", "jpg")))
}
