package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRegisterUploadedFiles_Replaces(t *testing.T) {
	r := NewRegistry()
	r.RegisterUploadedFiles([]string{"a.pdf", "b.docx"})
	r.RegisterUploadedFiles([]string{"c.txt"})

	assert.Equal(t, []string{"c.txt"}, r.Uploaded())

	r.RegisterUploadedFiles(nil)
	assert.Empty(t, r.Uploaded())
}

func TestRegisterUploadedFiles_CopiesInput(t *testing.T) {
	r := NewRegistry()
	names := []string{"a.pdf"}
	r.RegisterUploadedFiles(names)
	names[0] = "changed.pdf"

	assert.Equal(t, []string{"a.pdf"}, r.Uploaded())
}

func TestRegisterLiveFeedEntry_NewestFirst(t *testing.T) {
	base := time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC)
	r := NewRegistry()

	r.SetClock(fixedClock(base))
	first := r.RegisterLiveFeedEntry("First", "blog.x.com", "one")
	r.SetClock(fixedClock(base.Add(time.Second)))
	second := r.RegisterLiveFeedEntry("Second", "news.y.com", "two")

	feed := r.LiveFeed()
	require.Len(t, feed, 2)
	assert.Equal(t, second, feed[0])
	assert.Equal(t, first, feed[1])
	assert.Equal(t, "1758362400000", first.ID)
	assert.Equal(t, "2025-09-20 10:00:00", first.Timestamp())
}

func TestRegisterLiveFeedEntry_MonotonicIDs(t *testing.T) {
	now := time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC)
	r := NewRegistry()
	r.SetClock(fixedClock(now))

	a := r.RegisterLiveFeedEntry("A", "s", "c")
	b := r.RegisterLiveFeedEntry("B", "s", "c")
	c := r.RegisterLiveFeedEntry("C", "s", "c")

	assert.Equal(t, "1758362400000", a.ID)
	assert.Equal(t, "1758362400001", b.ID)
	assert.Equal(t, "1758362400002", c.ID)
}

func TestLiveFeed_ReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.RegisterLiveFeedEntry("A", "s", "c")

	feed := r.LiveFeed()
	feed[0].Title = "mutated"

	assert.Equal(t, "A", r.LiveFeed()[0].Title)
}
