package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-api/pkg/errors"
)

type reviewKey struct {
	userID        int64
	applicationID int64
}

type fakeReviewStore struct {
	targets   map[reviewKey]*models.ReviewTarget
	reviews   map[reviewKey]*models.Review
	createErr error
	listCalls int
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{targets: map[reviewKey]*models.ReviewTarget{}, reviews: map[reviewKey]*models.Review{}}
}

func (f *fakeReviewStore) FindTarget(ctx context.Context, applicationID, userID int64) (*models.ReviewTarget, error) {
	if t, ok := f.targets[reviewKey{userID, applicationID}]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeReviewStore) Exists(ctx context.Context, userID, applicationID int64) (bool, error) {
	_, ok := f.reviews[reviewKey{userID, applicationID}]
	return ok, nil
}

func (f *fakeReviewStore) Create(ctx context.Context, review *models.Review) error {
	if f.createErr != nil {
		return f.createErr
	}
	review.ID = int64(len(f.reviews) + 1)
	review.IsVisible = true
	f.reviews[reviewKey{review.UserID, review.ApplicationID}] = review
	return nil
}

func (f *fakeReviewStore) ListVisibleByCourse(ctx context.Context, courseID int64) ([]models.CourseReview, error) {
	f.listCalls++
	out := []models.CourseReview{}
	for key, r := range f.reviews {
		if f.targets[key].CourseID == courseID {
			out = append(out, models.CourseReview{ID: r.ID, Rating: r.Rating})
		}
	}
	return out, nil
}

func (f *fakeReviewStore) withApplication(userID, applicationID, courseID int64, status models.ApplicationStatus) *fakeReviewStore {
	f.targets[reviewKey{userID, applicationID}] = &models.ReviewTarget{ApplicationID: applicationID, CourseID: courseID, Status: status}
	return f
}

func TestReviewServiceSubmitCompleted(t *testing.T) {
	store := newFakeReviewStore().withApplication(3, 9, 5, models.StatusCompleted)
	svc := NewReviewService(store, nil, NewMetricsService(), 0, nil, nil)

	review, err := svc.Submit(context.Background(), models.SubmitReviewRequest{UserID: 3, ApplicationID: 9, Rating: 5})
	require.NoError(t, err)
	assert.True(t, review.IsVisible)
	assert.Equal(t, int64(1), review.ID)
}

func TestReviewServiceRejectsIneligibleStatusForEveryRating(t *testing.T) {
	for _, status := range []models.ApplicationStatus{models.StatusNew, models.StatusInProgress} {
		store := newFakeReviewStore().withApplication(3, 9, 5, status)
		svc := NewReviewService(store, nil, nil, 0, nil, nil)
		for rating := minRating; rating <= maxRating; rating++ {
			_, err := svc.Submit(context.Background(), models.SubmitReviewRequest{UserID: 3, ApplicationID: 9, Rating: rating})
			assert.True(t, errors.Is(err, appErrors.ErrIneligibleState), "status %s rating %d", status, rating)
		}
		assert.Empty(t, store.reviews)
	}
}

func TestReviewServiceRejectsOutOfRangeRating(t *testing.T) {
	store := newFakeReviewStore().withApplication(3, 9, 5, models.StatusCompleted)
	svc := NewReviewService(store, nil, nil, 0, nil, nil)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Submit(context.Background(), models.SubmitReviewRequest{UserID: 3, ApplicationID: 9, Rating: rating})
		assert.True(t, errors.Is(err, appErrors.ErrOutOfRange))
	}
}

func TestReviewServiceRejectsForeignApplication(t *testing.T) {
	store := newFakeReviewStore().withApplication(3, 9, 5, models.StatusCompleted)
	svc := NewReviewService(store, nil, nil, 0, nil, nil)

	_, err := svc.Submit(context.Background(), models.SubmitReviewRequest{UserID: 4, ApplicationID: 9, Rating: 4})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReviewServiceSecondSubmissionIsDuplicate(t *testing.T) {
	store := newFakeReviewStore().withApplication(3, 9, 5, models.StatusCompleted)
	svc := NewReviewService(store, nil, nil, 0, nil, nil)
	req := models.SubmitReviewRequest{UserID: 3, ApplicationID: 9, Rating: 4}

	_, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), req)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateReview))
	assert.Len(t, store.reviews, 1)
}

func TestReviewServiceUniqueViolationIsDuplicate(t *testing.T) {
	store := newFakeReviewStore().withApplication(3, 9, 5, models.StatusCompleted)
	store.createErr = appErrors.WithField(appErrors.ErrAlreadyExists, "application_id", "application_id already in use")
	svc := NewReviewService(store, nil, nil, 0, nil, nil)

	_, err := svc.Submit(context.Background(), models.SubmitReviewRequest{UserID: 3, ApplicationID: 9, Rating: 4})
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateReview))
}

func TestReviewServiceInvalidatesCourseReviews(t *testing.T) {
	store := newFakeReviewStore().withApplication(3, 9, 5, models.StatusCompleted)
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, 0, nil, true)
	svc := NewReviewService(store, cache, nil, 0, nil, nil)

	first, err := svc.ListForCourse(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, first)
	_, err = svc.ListForCourse(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)

	_, err = svc.Submit(context.Background(), models.SubmitReviewRequest{UserID: 3, ApplicationID: 9, Rating: 5})
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.deleted, "course_reviews:5")

	after, err := svc.ListForCourse(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, after, 1)
	assert.Equal(t, 2, store.listCalls)
}
