package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorportal/mentorportal-api/internal/models"
	appErrors "github.com/mentorportal/mentorportal-api/pkg/errors"
)

type reviewRepoStub struct {
	reviews      map[int64]*models.Review
	details      map[int64]*models.ReviewDetail
	records      []models.Review
	visibleArgs  []int64
	forReviewee  []models.ReviewDetail
	createErr    error
	lastCreated  *models.Review
	visibleCalls int
}

func (s *reviewRepoStub) Create(ctx context.Context, review *models.Review) error {
	if s.createErr != nil {
		return s.createErr
	}
	review.ID = 5
	s.lastCreated = review
	if s.details == nil {
		s.details = make(map[int64]*models.ReviewDetail)
	}
	s.details[review.ID] = &models.ReviewDetail{ID: review.ID, ReviewerID: review.ReviewerID, RevieweeID: review.RevieweeID, Content: review.Content}
	return nil
}

func (s *reviewRepoStub) FindByID(ctx context.Context, id int64) (*models.Review, error) {
	if review, ok := s.reviews[id]; ok {
		return review, nil
	}
	return nil, sql.ErrNoRows
}

func (s *reviewRepoStub) FindDetailByID(ctx context.Context, id int64) (*models.ReviewDetail, error) {
	if detail, ok := s.details[id]; ok {
		return detail, nil
	}
	return nil, sql.ErrNoRows
}

// ListVisibleForReviewees applies the same filter the SQL does: reviewee in
// the given set and the mentor-visibility flag set.
func (s *reviewRepoStub) ListVisibleForReviewees(ctx context.Context, revieweeIDs []int64) ([]models.ReviewDetail, error) {
	s.visibleCalls++
	s.visibleArgs = revieweeIDs
	paired := make(map[int64]bool, len(revieweeIDs))
	for _, id := range revieweeIDs {
		paired[id] = true
	}
	var details []models.ReviewDetail
	for _, review := range s.records {
		if review.IsVisibleToMentor && paired[review.RevieweeID] {
			details = append(details, models.ReviewDetail{ID: review.ID, ReviewerID: review.ReviewerID, RevieweeID: review.RevieweeID, Content: review.Content})
		}
	}
	return details, nil
}

func (s *reviewRepoStub) ListForReviewee(ctx context.Context, revieweeID int64) ([]models.ReviewDetail, error) {
	return s.forReviewee, nil
}

type reviewUserStub struct {
	users map[int64]*models.User
}

func (s *reviewUserStub) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

type reviewPairingStub struct {
	employeeIDs []int64
}

func (s *reviewPairingStub) EmployeeIDs(ctx context.Context, mentorID int64) ([]int64, error) {
	return s.employeeIDs, nil
}

func newReviewService(repo *reviewRepoStub, users *reviewUserStub, pairings *reviewPairingStub, pairs map[[2]int64]bool) *ReviewService {
	return NewReviewService(repo, users, pairings, NewAccessService(&pairingStub{pairs: pairs}), nil, nil)
}

func TestReviewServiceCreate(t *testing.T) {
	repo := &reviewRepoStub{}
	users := &reviewUserStub{users: map[int64]*models.User{7: {ID: 7}}}
	svc := newReviewService(repo, users, &reviewPairingStub{}, nil)

	detail, err := svc.Create(context.Background(), Caller{ID: 1, Role: models.RoleMentor}, models.CreateReviewRequest{RevieweeID: 7, Content: "Solid progress"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.ReviewerID)
	assert.Equal(t, int64(7), detail.RevieweeID)
	require.NotNil(t, repo.lastCreated)
	assert.True(t, repo.lastCreated.IsVisibleToMentor)
}

func TestReviewServiceCreateSelfReference(t *testing.T) {
	users := &reviewUserStub{users: map[int64]*models.User{7: {ID: 7}}}
	svc := newReviewService(&reviewRepoStub{}, users, &reviewPairingStub{}, nil)

	_, err := svc.Create(context.Background(), Caller{ID: 7, Role: models.RoleEmployee}, models.CreateReviewRequest{RevieweeID: 7, Content: "I am great"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSelfReference.Code, appErrors.FromError(err).Code)
}

func TestReviewServiceCreateRevieweeNotFound(t *testing.T) {
	svc := newReviewService(&reviewRepoStub{}, &reviewUserStub{}, &reviewPairingStub{}, nil)

	_, err := svc.Create(context.Background(), Caller{ID: 1, Role: models.RoleMentor}, models.CreateReviewRequest{RevieweeID: 99, Content: "Hello"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReviewServiceMentorListScopedToPairings(t *testing.T) {
	repo := &reviewRepoStub{records: []models.Review{{ID: 5, RevieweeID: 7, IsVisibleToMentor: true}}}
	svc := newReviewService(repo, &reviewUserStub{}, &reviewPairingStub{employeeIDs: []int64{7, 8}}, nil)

	reviews, err := svc.MentorList(context.Background(), Caller{ID: 1, Role: models.RoleMentor})
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Equal(t, []int64{7, 8}, repo.visibleArgs)
}

func TestReviewServiceMentorListExcludesHiddenReviews(t *testing.T) {
	repo := &reviewRepoStub{records: []models.Review{
		{ID: 5, RevieweeID: 7, IsVisibleToMentor: true},
		{ID: 6, RevieweeID: 7, IsVisibleToMentor: false},
		{ID: 8, RevieweeID: 9, IsVisibleToMentor: true},
	}}
	svc := newReviewService(repo, &reviewUserStub{}, &reviewPairingStub{employeeIDs: []int64{7}}, nil)

	reviews, err := svc.MentorList(context.Background(), Caller{ID: 1, Role: models.RoleMentor})
	require.NoError(t, err)
	// the hidden review about 7 and the review about unpaired 9 are filtered
	require.Len(t, reviews, 1)
	assert.Equal(t, int64(5), reviews[0].ID)
}

func TestReviewServiceMentorListNoPairings(t *testing.T) {
	repo := &reviewRepoStub{}
	svc := newReviewService(repo, &reviewUserStub{}, &reviewPairingStub{}, nil)

	reviews, err := svc.MentorList(context.Background(), Caller{ID: 1, Role: models.RoleMentor})
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.Equal(t, 1, repo.visibleCalls)
}

func TestReviewServiceGetAllowsParties(t *testing.T) {
	repo := &reviewRepoStub{
		reviews: map[int64]*models.Review{5: {ID: 5, ReviewerID: 3, RevieweeID: 7}},
		details: map[int64]*models.ReviewDetail{5: {ID: 5, ReviewerID: 3, RevieweeID: 7}},
	}
	svc := newReviewService(repo, &reviewUserStub{}, &reviewPairingStub{}, nil)

	detail, err := svc.Get(context.Background(), Caller{ID: 3, Role: models.RoleMentor}, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), detail.ID)

	detail, err = svc.Get(context.Background(), Caller{ID: 7, Role: models.RoleEmployee}, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), detail.ID)
}

func TestReviewServiceGetDeniesOutsiders(t *testing.T) {
	repo := &reviewRepoStub{
		reviews: map[int64]*models.Review{5: {ID: 5, ReviewerID: 3, RevieweeID: 7}},
		details: map[int64]*models.ReviewDetail{5: {ID: 5}},
	}
	svc := newReviewService(repo, &reviewUserStub{}, &reviewPairingStub{}, map[[2]int64]bool{{1, 7}: true})

	// paired mentor reads through the pairing hop
	_, err := svc.Get(context.Background(), Caller{ID: 1, Role: models.RoleMentor}, 5)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), Caller{ID: 2, Role: models.RoleMentor}, 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Get(context.Background(), Caller{ID: 9, Role: models.RoleEmployee}, 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReviewServiceGetNotFound(t *testing.T) {
	svc := newReviewService(&reviewRepoStub{}, &reviewUserStub{}, &reviewPairingStub{}, nil)

	_, err := svc.Get(context.Background(), Caller{ID: 3, Role: models.RoleMentor}, 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReviewServiceMyList(t *testing.T) {
	repo := &reviewRepoStub{forReviewee: []models.ReviewDetail{{ID: 5, RevieweeID: 7}, {ID: 6, RevieweeID: 7}}}
	svc := newReviewService(repo, &reviewUserStub{}, &reviewPairingStub{}, nil)

	reviews, err := svc.MyList(context.Background(), Caller{ID: 7, Role: models.RoleEmployee})
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}
