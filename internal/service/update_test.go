package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/fliptrack/internal/capture"
	"github.com/templui/fliptrack/internal/model"
)

func TestUpdateServicePost(t *testing.T) {
	ctx := context.Background()

	t.Run("stores photos and applies defaults", func(t *testing.T) {
		s := newTestServices(t)

		u, err := s.updates.Post(ctx, PostInput{ProjectID: 1}, []capture.Attachment{
			testAttachment(t, "Kitchen"),
			testAttachment(t, " Bath "),
		})
		require.NoError(t, err)

		assert.Equal(t, model.DefaultUpdateTitle, u.Title)
		assert.Equal(t, model.CategoryProgress, u.Category)
		assert.Equal(t, model.DefaultUpdateAuthor, u.Author)
		assert.False(t, u.Timestamp.IsZero())
		require.Len(t, u.Photos, 2)
		assert.Equal(t, "Kitchen", u.Photos[0].Caption)
		assert.Equal(t, "Bath", u.Photos[1].Caption)
		assert.Contains(t, u.Photos[0].URL, "http://localhost:8090/files/photos/1/")
		assert.NotEmpty(t, u.Photos[0].ThumbnailURL)

		// photo plus thumbnail each
		assert.Equal(t, 4, s.store.Len())

		updates, err := s.updates.ByProject(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, u.ID, updates[0].ID)
	})

	t.Run("needs photos and a project", func(t *testing.T) {
		s := newTestServices(t)

		_, err := s.updates.Post(ctx, PostInput{ProjectID: 1}, nil)
		assert.ErrorIs(t, err, ErrNoPhotos)

		_, err = s.updates.Post(ctx, PostInput{}, []capture.Attachment{testAttachment(t, "")})
		assert.ErrorIs(t, err, ErrProjectRequired)

		_, err = s.updates.Post(ctx, PostInput{ProjectID: 77}, []capture.Attachment{testAttachment(t, "")})
		assert.ErrorIs(t, err, ErrProjectRequired)

		assert.Zero(t, s.store.Len())
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		s := newTestServices(t)

		_, err := s.updates.Post(ctx, PostInput{ProjectID: 1, Category: "Gossip"}, []capture.Attachment{testAttachment(t, "")})
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})
}

func TestUpdateServiceDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)

	u, err := s.updates.Post(ctx, PostInput{ProjectID: 2}, []capture.Attachment{testAttachment(t, "Porch")})
	require.NoError(t, err)
	require.Equal(t, 2, s.store.Len())

	_, err = s.updates.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, s.store.Len())

	// seeded photos have no storage path
	_, err = s.updates.Delete(ctx, 1)
	require.NoError(t, err)
}

func TestUpdateServiceTimeline(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)

	all, err := s.updates.Timeline(ctx, FilterAll)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Mold found", all[0].Title)

	issues, err := s.updates.Timeline(ctx, "issue")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, model.CategoryIssue, issues[0].Category)

	_, err = s.updates.Timeline(ctx, "rumours")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestParseCategoryFilter(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"all":       "",
		"ALL":       "",
		"progress":  model.CategoryProgress,
		"Milestone": model.CategoryMilestone,
		" before ":  model.CategoryBefore,
	}
	for in, want := range cases {
		got, err := ParseCategoryFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
