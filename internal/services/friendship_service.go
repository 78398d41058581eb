package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"spendmate/internal/config"
	"spendmate/internal/kafka"
	"spendmate/internal/models"
	"spendmate/internal/storage"
	"spendmate/pkg/logging"
)

var (
	ErrSelfFriendRequest  = errors.New("cannot send a friend request to yourself")
	ErrInvalidAction      = errors.New("action must be accept or reject")
	ErrRequestNotPending  = errors.New("friend request has already been responded to")
	ErrRelationshipExists = errors.New("a relationship already exists for this pair")
	ErrFriendshipNotFound = errors.New("friend request not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotFriends         = errors.New("not friends with this user")
)

// Recognized respond actions.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// FriendshipService owns the friend-request lifecycle and the queries scoped
// to accepted relationships.
type FriendshipService interface {
	SendRequest(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error)
	Respond(ctx context.Context, friendshipID string, responderID uint, action string) (models.FriendshipStatus, error)
	ListFriends(ctx context.Context, userID uint) ([]models.FriendEntry, error)
	ListPendingIncoming(ctx context.Context, userID uint) ([]models.PendingRequest, error)
	ListPendingOutgoing(ctx context.Context, userID uint) ([]models.PendingRequest, error)
	FriendStats(ctx context.Context, currentUserID, friendID uint) (*models.FriendStats, error)
}

type friendshipService struct {
	userRepo       storage.UserRepository
	friendshipRepo storage.FriendshipRepository
	expenseRepo    storage.ExpenseRepository
	producer       kafka.MessageProducer
	kafkaCfg       config.KafkaConfig
	statsCfg       config.StatsConfig
}

// NewFriendshipService creates a new FriendshipService instance. The producer
// may be nil, in which case no events are published.
func NewFriendshipService(
	userRepo storage.UserRepository,
	friendshipRepo storage.FriendshipRepository,
	expenseRepo storage.ExpenseRepository,
	producer kafka.MessageProducer,
	kafkaCfg config.KafkaConfig,
	statsCfg config.StatsConfig,
) FriendshipService {
	return &friendshipService{
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
		expenseRepo:    expenseRepo,
		producer:       producer,
		kafkaCfg:       kafkaCfg,
		statsCfg:       statsCfg,
	}
}

// SendRequest creates a pending friendship record from requester to
// addressee. A record relating the pair in any status blocks a new request;
// a rejected record is a permanent block.
func (s *friendshipService) SendRequest(ctx context.Context, requesterID, addresseeID uint) (*models.Friendship, error) {
	if requesterID == addresseeID {
		return nil, ErrSelfFriendRequest
	}

	// Both parties must exist before a record referencing them is created.
	if _, err := s.userRepo.GetByID(ctx, requesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("checking requester %d: %w", requesterID, err)
	}
	if _, err := s.userRepo.GetByID(ctx, addresseeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("checking addressee %d: %w", addresseeID, err)
	}

	existing, err := s.friendshipRepo.FindByPair(ctx, requesterID, addresseeID)
	if err != nil {
		return nil, fmt.Errorf("checking existing relationship between %d and %d: %w", requesterID, addresseeID, err)
	}
	if existing != nil {
		return nil, ErrRelationshipExists
	}

	friendship := &models.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.FriendshipStatusPending,
	}
	if err := s.friendshipRepo.Create(ctx, friendship); err != nil {
		// The canonical pair index closes the race between the pre-check and
		// the insert: the loser of a concurrent duplicate gets a conflict.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRelationshipExists
		}
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	s.publishEvent(ctx, kafka.EventFriendRequested, friendship, requesterID, addresseeID)
	return friendship, nil
}

// Respond accepts or rejects a pending request. Only the addressee may
// respond; anyone else observes the record as absent. Accepted and rejected
// are terminal states.
func (s *friendshipService) Respond(ctx context.Context, friendshipID string, responderID uint, action string) (models.FriendshipStatus, error) {
	var newStatus models.FriendshipStatus
	switch action {
	case ActionAccept:
		newStatus = models.FriendshipStatusAccepted
	case ActionReject:
		newStatus = models.FriendshipStatusRejected
	default:
		return "", ErrInvalidAction
	}

	var requesterID uint
	err := s.friendshipRepo.InTx(ctx, func(repo storage.FriendshipRepository) error {
		friendship, err := repo.GetByID(ctx, friendshipID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFriendshipNotFound
			}
			return fmt.Errorf("retrieving friend request %s: %w", friendshipID, err)
		}

		// The requester and third parties cannot see the request from the
		// responder's side, so both get not-found rather than forbidden.
		if friendship.AddresseeID != responderID {
			return ErrFriendshipNotFound
		}
		if friendship.Status.Terminal() {
			return ErrRequestNotPending
		}

		// The status-conditional update closes the race between the read
		// above and a concurrent responder: the record read as pending may
		// already be resolved by the time the update runs.
		if err := repo.UpdateStatus(ctx, friendshipID, newStatus); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotPending
			}
			return fmt.Errorf("updating friend request %s: %w", friendshipID, err)
		}
		requesterID = friendship.RequesterID
		return nil
	})
	if err != nil {
		return "", err
	}

	eventType := kafka.EventFriendAccepted
	if newStatus == models.FriendshipStatusRejected {
		eventType = kafka.EventFriendRejected
	}
	s.publishEvent(ctx, eventType, &models.Friendship{ID: friendshipID}, responderID, requesterID)

	return newStatus, nil
}

// ListFriends returns the accepted relationships of userID, newest first,
// with the other party's public profile resolved.
func (s *friendshipService) ListFriends(ctx context.Context, userID uint) ([]models.FriendEntry, error) {
	friendships, err := s.friendshipRepo.ListAcceptedForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing friends for user %d: %w", userID, err)
	}

	peerIDs := make([]uint, 0, len(friendships))
	for _, f := range friendships {
		peerIDs = append(peerIDs, peerOf(&f, userID))
	}
	peers, err := s.resolvePeers(ctx, peerIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]models.FriendEntry, 0, len(friendships))
	for _, f := range friendships {
		peer, ok := peers[peerOf(&f, userID)]
		if !ok {
			continue
		}
		entries = append(entries, models.FriendEntry{
			FriendshipID: f.ID,
			Status:       f.Status,
			CreatedAt:    f.CreatedAt,
			Peer:         peer,
		})
	}
	return entries, nil
}

// ListPendingIncoming returns pending requests addressed to userID, newest
// first, with the requester's public profile resolved.
func (s *friendshipService) ListPendingIncoming(ctx context.Context, userID uint) ([]models.PendingRequest, error) {
	friendships, err := s.friendshipRepo.ListPendingIncoming(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing pending requests for user %d: %w", userID, err)
	}

	peerIDs := make([]uint, 0, len(friendships))
	for _, f := range friendships {
		peerIDs = append(peerIDs, f.RequesterID)
	}
	peers, err := s.resolvePeers(ctx, peerIDs)
	if err != nil {
		return nil, err
	}

	requests := make([]models.PendingRequest, 0, len(friendships))
	for _, f := range friendships {
		peer, ok := peers[f.RequesterID]
		if !ok {
			continue
		}
		requests = append(requests, models.PendingRequest{
			FriendshipID: f.ID,
			Status:       f.Status,
			CreatedAt:    f.CreatedAt,
			Requester:    peer,
		})
	}
	return requests, nil
}

// ListPendingOutgoing returns pending requests sent by userID, newest first,
// with the addressee's public profile resolved.
func (s *friendshipService) ListPendingOutgoing(ctx context.Context, userID uint) ([]models.PendingRequest, error) {
	friendships, err := s.friendshipRepo.ListPendingOutgoing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing outgoing requests for user %d: %w", userID, err)
	}

	peerIDs := make([]uint, 0, len(friendships))
	for _, f := range friendships {
		peerIDs = append(peerIDs, f.AddresseeID)
	}
	peers, err := s.resolvePeers(ctx, peerIDs)
	if err != nil {
		return nil, err
	}

	requests := make([]models.PendingRequest, 0, len(friendships))
	for _, f := range friendships {
		peer, ok := peers[f.AddresseeID]
		if !ok {
			continue
		}
		requests = append(requests, models.PendingRequest{
			FriendshipID: f.ID,
			Status:       f.Status,
			CreatedAt:    f.CreatedAt,
			Addressee:    peer,
		})
	}
	return requests, nil
}

// FriendStats aggregates a friend's spending over the configured recent
// window. The caller must have an accepted relationship with the friend; the
// aggregation then uses the same verified friend id, never a separate
// client-supplied one.
func (s *friendshipService) FriendStats(ctx context.Context, currentUserID, friendID uint) (*models.FriendStats, error) {
	accepted, err := s.friendshipRepo.IsAccepted(ctx, currentUserID, friendID)
	if err != nil {
		return nil, fmt.Errorf("checking friendship between %d and %d: %w", currentUserID, friendID, err)
	}
	if !accepted {
		return nil, ErrNotFriends
	}

	windowMonths := s.statsCfg.WindowMonths
	if windowMonths <= 0 {
		windowMonths = 6
	}
	since := time.Now().AddDate(0, -windowMonths, 0)

	expenses, err := s.expenseRepo.ListForUserSince(ctx, friendID, since)
	if err != nil {
		return nil, fmt.Errorf("loading expenses for user %d: %w", friendID, err)
	}

	return aggregateStats(expenses), nil
}

func aggregateStats(expenses []models.Expense) *models.FriendStats {
	stats := &models.FriendStats{
		MonthlyBreakdown:  []models.MonthlyStat{},
		CategoryBreakdown: []models.CategoryStat{},
	}

	var total float64
	monthly := make(map[string]*models.MonthlyStat)
	byCategory := make(map[string]*models.CategoryStat)

	for _, e := range expenses {
		total += e.Amount
		stats.TotalExpenses++

		month := e.SpentAt.Format("2006-01")
		m, ok := monthly[month]
		if !ok {
			m = &models.MonthlyStat{Month: month}
			monthly[month] = m
		}
		m.Total += e.Amount
		m.Count++

		category := e.Category.Name
		if category == "" {
			category = "uncategorized"
		}
		c, ok := byCategory[category]
		if !ok {
			c = &models.CategoryStat{Category: category}
			byCategory[category] = c
		}
		c.Total += e.Amount
		c.Count++
	}

	stats.TotalAmount = round2(total)
	if stats.TotalExpenses > 0 {
		stats.AverageAmount = round2(total / float64(stats.TotalExpenses))
	}

	for _, m := range monthly {
		m.Total = round2(m.Total)
		stats.MonthlyBreakdown = append(stats.MonthlyBreakdown, *m)
	}
	sort.Slice(stats.MonthlyBreakdown, func(i, j int) bool {
		// YYYY-MM sorts lexicographically; newest first.
		return stats.MonthlyBreakdown[i].Month > stats.MonthlyBreakdown[j].Month
	})

	for _, c := range byCategory {
		c.Total = round2(c.Total)
		stats.CategoryBreakdown = append(stats.CategoryBreakdown, *c)
	}
	sort.Slice(stats.CategoryBreakdown, func(i, j int) bool {
		if stats.CategoryBreakdown[i].Total != stats.CategoryBreakdown[j].Total {
			return stats.CategoryBreakdown[i].Total > stats.CategoryBreakdown[j].Total
		}
		return stats.CategoryBreakdown[i].Category < stats.CategoryBreakdown[j].Category
	})

	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func peerOf(f *models.Friendship, userID uint) uint {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}

func (s *friendshipService) resolvePeers(ctx context.Context, ids []uint) (map[uint]*models.UserBasicInfo, error) {
	infos, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving peer profiles: %w", err)
	}
	byID := make(map[uint]*models.UserBasicInfo, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
	}
	return byID, nil
}

// publishEvent emits a friendship event for the notifier. Publishing is best
// effort: the state change has already committed, so a broker failure is
// logged and otherwise ignored.
func (s *friendshipService) publishEvent(ctx context.Context, eventType string, friendship *models.Friendship, actorID, recipientID uint) {
	if s.producer == nil {
		return
	}

	event := kafka.FriendshipEvent{
		Type:         eventType,
		FriendshipID: friendship.ID,
		ActorID:      actorID,
		RecipientID:  recipientID,
		Timestamp:    time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logging.Error("failed to marshal friendship event", zap.Error(err))
		return
	}

	topic := s.kafkaCfg.FriendshipEventTopic
	if err := s.producer.SendMessage(ctx, topic, []byte(friendship.ID), payload); err != nil {
		logging.Warn("failed to publish friendship event",
			zap.String("type", eventType),
			zap.String("friendship_id", friendship.ID),
			zap.Error(err))
	}
}
