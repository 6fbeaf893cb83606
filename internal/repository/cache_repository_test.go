package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "enroll:")
	ctx := context.Background()

	var dest []string
	err := repo.Get(ctx, "courses:active", &dest)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "courses:active", []string{"a"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "courses:active"))
	assert.NoError(t, repo.DeleteByPattern(ctx, "course_reviews:*"))
	assert.NoError(t, repo.Close())
	assert.Equal(t, "enroll:courses:active", repo.key("courses:active"))
}
