package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"spendmate/internal/config"
	"spendmate/internal/models"
	"spendmate/internal/storage"
)

type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo(ids ...uint) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*models.User)}
	for _, id := range ids {
		r.users[id] = &models.User{
			BaseModel:   models.BaseModel{ID: id},
			Username:    "user" + uuid.NewString()[:8],
			DisplayName: "User",
		}
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		user.ID = uint(len(r.users) + 1)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Search(ctx context.Context, term string, excludeUserID uint, limit int) ([]models.UserBasicInfo, error) {
	return nil, nil
}

func (r *fakeUserRepo) GetBasicInfoByID(ctx context.Context, id uint) (*models.UserBasicInfo, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.UserBasicInfo{ID: user.ID, Username: user.Username, DisplayName: user.DisplayName}, nil
}

func (r *fakeUserRepo) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error) {
	infos := make([]*models.UserBasicInfo, 0, len(userIDs))
	seen := make(map[uint]bool)
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if user, ok := r.users[id]; ok {
			infos = append(infos, &models.UserBasicInfo{ID: user.ID, Username: user.Username, DisplayName: user.DisplayName})
		}
	}
	return infos, nil
}

type fakeFriendshipRepo struct {
	byID   map[string]*models.Friendship
	byPair map[[2]uint]string
}

func newFakeFriendshipRepo() *fakeFriendshipRepo {
	return &fakeFriendshipRepo{
		byID:   make(map[string]*models.Friendship),
		byPair: make(map[[2]uint]string),
	}
}

func (r *fakeFriendshipRepo) Create(ctx context.Context, friendship *models.Friendship) error {
	low, high := models.CanonicalPair(friendship.RequesterID, friendship.AddresseeID)
	pair := [2]uint{low, high}
	if _, exists := r.byPair[pair]; exists {
		return gorm.ErrDuplicatedKey
	}
	friendship.ID = uuid.NewString()
	friendship.UserLowID = low
	friendship.UserHighID = high
	friendship.CreatedAt = time.Now()
	stored := *friendship
	r.byID[friendship.ID] = &stored
	r.byPair[pair] = friendship.ID
	return nil
}

func (r *fakeFriendshipRepo) GetByID(ctx context.Context, id string) (*models.Friendship, error) {
	f, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	dup := *f
	return &dup, nil
}

func (r *fakeFriendshipRepo) FindByPair(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	low, high := models.CanonicalPair(userID1, userID2)
	id, ok := r.byPair[[2]uint{low, high}]
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *fakeFriendshipRepo) UpdateStatus(ctx context.Context, id string, status models.FriendshipStatus) error {
	f, ok := r.byID[id]
	if !ok || f.Status != models.FriendshipStatusPending {
		return gorm.ErrRecordNotFound
	}
	f.Status = status
	f.UpdatedAt = time.Now()
	return nil
}

func (r *fakeFriendshipRepo) ListAcceptedForUser(ctx context.Context, userID uint) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, f := range r.byID {
		if f.Status == models.FriendshipStatusAccepted && (f.RequesterID == userID || f.AddresseeID == userID) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFriendshipRepo) ListPendingIncoming(ctx context.Context, addresseeID uint) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, f := range r.byID {
		if f.Status == models.FriendshipStatusPending && f.AddresseeID == addresseeID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFriendshipRepo) ListPendingOutgoing(ctx context.Context, requesterID uint) ([]models.Friendship, error) {
	var out []models.Friendship
	for _, f := range r.byID {
		if f.Status == models.FriendshipStatusPending && f.RequesterID == requesterID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFriendshipRepo) IsAccepted(ctx context.Context, userID1, userID2 uint) (bool, error) {
	f, err := r.FindByPair(ctx, userID1, userID2)
	if err != nil {
		return false, err
	}
	return f != nil && f.Status == models.FriendshipStatusAccepted, nil
}

func (r *fakeFriendshipRepo) InTx(ctx context.Context, fn func(storage.FriendshipRepository) error) error {
	return fn(r)
}

// stalePendingReads reports every record as still pending, simulating a
// responder whose read preceded a concurrent resolution.
type stalePendingReads struct {
	*fakeFriendshipRepo
}

func (r *stalePendingReads) GetByID(ctx context.Context, id string) (*models.Friendship, error) {
	f, err := r.fakeFriendshipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Status = models.FriendshipStatusPending
	return f, nil
}

func (r *stalePendingReads) InTx(ctx context.Context, fn func(storage.FriendshipRepository) error) error {
	return fn(r)
}

// racedCreates reports no existing pair but fails every insert with a
// duplicate key, simulating the loser of a concurrent duplicate request.
type racedCreates struct {
	*fakeFriendshipRepo
}

func (r *racedCreates) FindByPair(ctx context.Context, userID1, userID2 uint) (*models.Friendship, error) {
	return nil, nil
}

func (r *racedCreates) Create(ctx context.Context, friendship *models.Friendship) error {
	return gorm.ErrDuplicatedKey
}

type fakeExpenseRepo struct {
	expenses []models.Expense
	nextID   uint
}

func (r *fakeExpenseRepo) Create(ctx context.Context, expense *models.Expense) error {
	if expense.ID == 0 {
		r.nextID++
		expense.ID = r.nextID
	}
	r.expenses = append(r.expenses, *expense)
	return nil
}

func (r *fakeExpenseRepo) GetByID(ctx context.Context, id uint) (*models.Expense, error) {
	for i := range r.expenses {
		if r.expenses[i].ID == id {
			return &r.expenses[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeExpenseRepo) Update(ctx context.Context, expense *models.Expense) error {
	for i := range r.expenses {
		if r.expenses[i].ID == expense.ID {
			r.expenses[i] = *expense
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeExpenseRepo) Delete(ctx context.Context, id uint) error {
	for i := range r.expenses {
		if r.expenses[i].ID == id {
			r.expenses = append(r.expenses[:i], r.expenses[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeExpenseRepo) ListForUser(ctx context.Context, userID uint) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range r.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) ListForUserSince(ctx context.Context, userID uint, since time.Time) ([]models.Expense, error) {
	var out []models.Expense
	for _, e := range r.expenses {
		if e.UserID == userID && !e.SpentAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestFriendshipService(userRepo *fakeUserRepo, friendshipRepo *fakeFriendshipRepo, expenseRepo *fakeExpenseRepo) FriendshipService {
	return NewFriendshipService(userRepo, friendshipRepo, expenseRepo, nil, config.KafkaConfig{}, config.StatsConfig{WindowMonths: 6})
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending record", func(t *testing.T) {
		svc := newTestFriendshipService(newFakeUserRepo(1, 2), newFakeFriendshipRepo(), &fakeExpenseRepo{})

		friendship, err := svc.SendRequest(ctx, 1, 2)
		require.NoError(t, err)
		assert.NotEmpty(t, friendship.ID)
		assert.Equal(t, uint(1), friendship.RequesterID)
		assert.Equal(t, uint(2), friendship.AddresseeID)
		assert.Equal(t, models.FriendshipStatusPending, friendship.Status)
	})

	t.Run("rejects a self request", func(t *testing.T) {
		svc := newTestFriendshipService(newFakeUserRepo(1), newFakeFriendshipRepo(), &fakeExpenseRepo{})

		_, err := svc.SendRequest(ctx, 1, 1)
		assert.ErrorIs(t, err, ErrSelfFriendRequest)
	})

	t.Run("rejects unknown users", func(t *testing.T) {
		svc := newTestFriendshipService(newFakeUserRepo(1), newFakeFriendshipRepo(), &fakeExpenseRepo{})

		_, err := svc.SendRequest(ctx, 1, 99)
		assert.ErrorIs(t, err, ErrUserNotFound)

		_, err = svc.SendRequest(ctx, 99, 1)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("duplicate request conflicts", func(t *testing.T) {
		svc := newTestFriendshipService(newFakeUserRepo(1, 2), newFakeFriendshipRepo(), &fakeExpenseRepo{})

		_, err := svc.SendRequest(ctx, 1, 2)
		require.NoError(t, err)

		_, err = svc.SendRequest(ctx, 1, 2)
		assert.ErrorIs(t, err, ErrRelationshipExists)
	})

	t.Run("reverse direction conflicts too", func(t *testing.T) {
		svc := newTestFriendshipService(newFakeUserRepo(1, 2), newFakeFriendshipRepo(), &fakeExpenseRepo{})

		_, err := svc.SendRequest(ctx, 1, 2)
		require.NoError(t, err)

		_, err = svc.SendRequest(ctx, 2, 1)
		assert.ErrorIs(t, err, ErrRelationshipExists)
	})

	t.Run("losing the insert race maps to a conflict", func(t *testing.T) {
		// The pre-check saw no pair, the unique index still rejected the
		// insert because a concurrent request won.
		repo := &racedCreates{newFakeFriendshipRepo()}
		svc := NewFriendshipService(newFakeUserRepo(1, 2), repo, &fakeExpenseRepo{}, nil, config.KafkaConfig{}, config.StatsConfig{})

		_, err := svc.SendRequest(ctx, 1, 2)
		assert.ErrorIs(t, err, ErrRelationshipExists)
	})

	t.Run("a rejected record blocks new requests in both directions", func(t *testing.T) {
		svc := newTestFriendshipService(newFakeUserRepo(1, 2), newFakeFriendshipRepo(), &fakeExpenseRepo{})

		friendship, err := svc.SendRequest(ctx, 1, 2)
		require.NoError(t, err)
		_, err = svc.Respond(ctx, friendship.ID, 2, ActionReject)
		require.NoError(t, err)

		_, err = svc.SendRequest(ctx, 1, 2)
		assert.ErrorIs(t, err, ErrRelationshipExists)
		_, err = svc.SendRequest(ctx, 2, 1)
		assert.ErrorIs(t, err, ErrRelationshipExists)
	})
}

func TestRespond(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (FriendshipService, string) {
		svc := newTestFriendshipService(newFakeUserRepo(1, 2, 3), newFakeFriendshipRepo(), &fakeExpenseRepo{})
		friendship, err := svc.SendRequest(ctx, 1, 2)
		require.NoError(t, err)
		return svc, friendship.ID
	}

	t.Run("addressee accepts", func(t *testing.T) {
		svc, id := setup(t)

		status, err := svc.Respond(ctx, id, 2, ActionAccept)
		require.NoError(t, err)
		assert.Equal(t, models.FriendshipStatusAccepted, status)
	})

	t.Run("addressee rejects", func(t *testing.T) {
		svc, id := setup(t)

		status, err := svc.Respond(ctx, id, 2, ActionReject)
		require.NoError(t, err)
		assert.Equal(t, models.FriendshipStatusRejected, status)
	})

	t.Run("requester cannot respond", func(t *testing.T) {
		svc, id := setup(t)

		_, err := svc.Respond(ctx, id, 1, ActionAccept)
		assert.ErrorIs(t, err, ErrFriendshipNotFound)
	})

	t.Run("third party cannot respond", func(t *testing.T) {
		svc, id := setup(t)

		_, err := svc.Respond(ctx, id, 3, ActionAccept)
		assert.ErrorIs(t, err, ErrFriendshipNotFound)
	})

	t.Run("unknown action", func(t *testing.T) {
		svc, id := setup(t)

		_, err := svc.Respond(ctx, id, 2, "block")
		assert.ErrorIs(t, err, ErrInvalidAction)
	})

	t.Run("unknown friendship", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.Respond(ctx, uuid.NewString(), 2, ActionAccept)
		assert.ErrorIs(t, err, ErrFriendshipNotFound)
	})

	t.Run("concurrent responders resolve the request once", func(t *testing.T) {
		// Both calls read the record as pending, as under interleaved
		// transactions; the conditional update must let only one commit.
		base := newFakeFriendshipRepo()
		users := newFakeUserRepo(1, 2)
		svc := newTestFriendshipService(users, base, &fakeExpenseRepo{})
		friendship, err := svc.SendRequest(ctx, 1, 2)
		require.NoError(t, err)

		staleSvc := NewFriendshipService(users, &stalePendingReads{base}, &fakeExpenseRepo{}, nil, config.KafkaConfig{}, config.StatsConfig{})

		status, err := staleSvc.Respond(ctx, friendship.ID, 2, ActionAccept)
		require.NoError(t, err)
		assert.Equal(t, models.FriendshipStatusAccepted, status)

		_, err = staleSvc.Respond(ctx, friendship.ID, 2, ActionReject)
		assert.ErrorIs(t, err, ErrRequestNotPending)

		stored, err := base.GetByID(ctx, friendship.ID)
		require.NoError(t, err)
		assert.Equal(t, models.FriendshipStatusAccepted, stored.Status)
	})

	t.Run("resolved requests are terminal", func(t *testing.T) {
		svc, id := setup(t)

		_, err := svc.Respond(ctx, id, 2, ActionAccept)
		require.NoError(t, err)

		_, err = svc.Respond(ctx, id, 2, ActionReject)
		assert.ErrorIs(t, err, ErrRequestNotPending)
	})
}

func TestListFriends(t *testing.T) {
	ctx := context.Background()
	svc := newTestFriendshipService(newFakeUserRepo(1, 2, 3), newFakeFriendshipRepo(), &fakeExpenseRepo{})

	accepted, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)
	_, err = svc.Respond(ctx, accepted.ID, 2, ActionAccept)
	require.NoError(t, err)

	// A pending request must not surface in either friend list.
	_, err = svc.SendRequest(ctx, 1, 3)
	require.NoError(t, err)

	friendsOf1, err := svc.ListFriends(ctx, 1)
	require.NoError(t, err)
	require.Len(t, friendsOf1, 1)
	assert.Equal(t, accepted.ID, friendsOf1[0].FriendshipID)
	assert.Equal(t, uint(2), friendsOf1[0].Peer.ID)

	friendsOf2, err := svc.ListFriends(ctx, 2)
	require.NoError(t, err)
	require.Len(t, friendsOf2, 1)
	assert.Equal(t, uint(1), friendsOf2[0].Peer.ID)

	friendsOf3, err := svc.ListFriends(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, friendsOf3)
}

func TestListPending(t *testing.T) {
	ctx := context.Background()
	svc := newTestFriendshipService(newFakeUserRepo(1, 2, 3), newFakeFriendshipRepo(), &fakeExpenseRepo{})

	friendship, err := svc.SendRequest(ctx, 1, 2)
	require.NoError(t, err)

	incoming, err := svc.ListPendingIncoming(ctx, 2)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, friendship.ID, incoming[0].FriendshipID)
	require.NotNil(t, incoming[0].Requester)
	assert.Equal(t, uint(1), incoming[0].Requester.ID)

	outgoing, err := svc.ListPendingOutgoing(ctx, 1)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	require.NotNil(t, outgoing[0].Addressee)
	assert.Equal(t, uint(2), outgoing[0].Addressee.ID)

	// The requester has no incoming entry and the addressee no outgoing one.
	incoming, err = svc.ListPendingIncoming(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, incoming)

	outgoing, err = svc.ListPendingOutgoing(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	// Accepting clears the request from both pending views.
	_, err = svc.Respond(ctx, friendship.ID, 2, ActionAccept)
	require.NoError(t, err)

	incoming, err = svc.ListPendingIncoming(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, incoming)
}

func TestFriendStats(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, expenses []models.Expense) FriendshipService {
		expenseRepo := &fakeExpenseRepo{expenses: expenses}
		svc := newTestFriendshipService(newFakeUserRepo(1, 2, 3), newFakeFriendshipRepo(), expenseRepo)
		friendship, err := svc.SendRequest(ctx, 1, 2)
		require.NoError(t, err)
		_, err = svc.Respond(ctx, friendship.ID, 2, ActionAccept)
		require.NoError(t, err)
		return svc
	}

	t.Run("forbidden without an accepted friendship", func(t *testing.T) {
		svc := setup(t, nil)

		_, err := svc.FriendStats(ctx, 1, 3)
		assert.ErrorIs(t, err, ErrNotFriends)

		// A pending request is not enough.
		_, err = svc.SendRequest(ctx, 1, 3)
		require.NoError(t, err)
		_, err = svc.FriendStats(ctx, 1, 3)
		assert.ErrorIs(t, err, ErrNotFriends)
	})

	t.Run("visible to both sides of an accepted friendship", func(t *testing.T) {
		now := time.Now()
		svc := setup(t, []models.Expense{
			{UserID: 2, Amount: 10.10, SpentAt: now, Category: models.Category{Name: "food"}},
			{UserID: 2, Amount: 20.20, SpentAt: now, Category: models.Category{Name: "food"}},
		})

		stats, err := svc.FriendStats(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalExpenses)
		assert.InDelta(t, 30.30, stats.TotalAmount, 0.001)
		assert.InDelta(t, 15.15, stats.AverageAmount, 0.001)

		_, err = svc.FriendStats(ctx, 2, 1)
		require.NoError(t, err)
	})

	t.Run("old expenses fall outside the window", func(t *testing.T) {
		now := time.Now()
		svc := setup(t, []models.Expense{
			{UserID: 2, Amount: 50, SpentAt: now.AddDate(-1, 0, 0), Category: models.Category{Name: "food"}},
			{UserID: 2, Amount: 10, SpentAt: now, Category: models.Category{Name: "food"}},
		})

		stats, err := svc.FriendStats(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalExpenses)
		assert.InDelta(t, 10.0, stats.TotalAmount, 0.001)
	})

	t.Run("only the friend's own expenses count", func(t *testing.T) {
		now := time.Now()
		svc := setup(t, []models.Expense{
			{UserID: 2, Amount: 10, SpentAt: now, Category: models.Category{Name: "food"}},
			{UserID: 3, Amount: 99, SpentAt: now, Category: models.Category{Name: "food"}},
		})

		stats, err := svc.FriendStats(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalExpenses)
		assert.InDelta(t, 10.0, stats.TotalAmount, 0.001)
	})
}

func TestAggregateStats(t *testing.T) {
	jan := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 3, 9, 0, 0, 0, time.UTC)

	t.Run("empty input yields zeroed stats", func(t *testing.T) {
		stats := aggregateStats(nil)
		assert.Equal(t, 0, stats.TotalExpenses)
		assert.Zero(t, stats.TotalAmount)
		assert.Zero(t, stats.AverageAmount)
		assert.Empty(t, stats.MonthlyBreakdown)
		assert.Empty(t, stats.CategoryBreakdown)
	})

	t.Run("monthly buckets are newest first", func(t *testing.T) {
		stats := aggregateStats([]models.Expense{
			{Amount: 10, SpentAt: jan, Category: models.Category{Name: "food"}},
			{Amount: 20, SpentAt: feb, Category: models.Category{Name: "food"}},
			{Amount: 5, SpentAt: jan, Category: models.Category{Name: "food"}},
		})

		require.Len(t, stats.MonthlyBreakdown, 2)
		assert.Equal(t, "2026-02", stats.MonthlyBreakdown[0].Month)
		assert.InDelta(t, 20.0, stats.MonthlyBreakdown[0].Total, 0.001)
		assert.Equal(t, 1, stats.MonthlyBreakdown[0].Count)
		assert.Equal(t, "2026-01", stats.MonthlyBreakdown[1].Month)
		assert.InDelta(t, 15.0, stats.MonthlyBreakdown[1].Total, 0.001)
		assert.Equal(t, 2, stats.MonthlyBreakdown[1].Count)
	})

	t.Run("category buckets order by total then name", func(t *testing.T) {
		stats := aggregateStats([]models.Expense{
			{Amount: 10, SpentAt: jan, Category: models.Category{Name: "transport"}},
			{Amount: 30, SpentAt: jan, Category: models.Category{Name: "food"}},
			{Amount: 10, SpentAt: jan, Category: models.Category{Name: "health"}},
		})

		require.Len(t, stats.CategoryBreakdown, 3)
		assert.Equal(t, "food", stats.CategoryBreakdown[0].Category)
		assert.Equal(t, "health", stats.CategoryBreakdown[1].Category)
		assert.Equal(t, "transport", stats.CategoryBreakdown[2].Category)
	})

	t.Run("missing category falls back to uncategorized", func(t *testing.T) {
		stats := aggregateStats([]models.Expense{
			{Amount: 7.77, SpentAt: jan},
		})

		require.Len(t, stats.CategoryBreakdown, 1)
		assert.Equal(t, "uncategorized", stats.CategoryBreakdown[0].Category)
	})

	t.Run("totals and averages round to cents", func(t *testing.T) {
		stats := aggregateStats([]models.Expense{
			{Amount: 10.004, SpentAt: jan, Category: models.Category{Name: "food"}},
			{Amount: 20.003, SpentAt: jan, Category: models.Category{Name: "food"}},
		})

		assert.InDelta(t, 30.01, stats.TotalAmount, 0.0001)
		assert.InDelta(t, 15.00, stats.AverageAmount, 0.0001)
	})

	t.Run("rounding is consistent regardless of order", func(t *testing.T) {
		forward := aggregateStats([]models.Expense{
			{Amount: 10.005, SpentAt: jan, Category: models.Category{Name: "food"}},
			{Amount: 20.00, SpentAt: jan, Category: models.Category{Name: "food"}},
		})
		backward := aggregateStats([]models.Expense{
			{Amount: 20.00, SpentAt: jan, Category: models.Category{Name: "food"}},
			{Amount: 10.005, SpentAt: jan, Category: models.Category{Name: "food"}},
		})

		assert.Equal(t, forward.TotalAmount, backward.TotalAmount)
		assert.Equal(t, forward.AverageAmount, backward.AverageAmount)
		// Already rounded to two decimals: re-rounding changes nothing.
		assert.Equal(t, forward.TotalAmount, round2(forward.TotalAmount))
		assert.InDelta(t, 30.0, forward.TotalAmount, 0.02)
	})
}
