package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/readnestapp/readnest-server/internal/domain"
	"github.com/readnestapp/readnest-server/internal/sse"
)

// Activity storage key prefixes.
// Uses inverted timestamps for descending order (newest first) during forward iteration.
const (
	activityPrefix        = "activity:"
	activityIdxTimePrefix = "activity:idx:time:"
	activityIdxUserPrefix = "activity:idx:user:"
)

// ErrActivityNotFound is returned when an activity cannot be found by ID.
var ErrActivityNotFound = errors.New("activity not found")

// invertedTimestamp returns a string that sorts in descending order.
// Uses MaxInt64 - UnixNano to ensure newest timestamps come first during forward iteration.
func invertedTimestamp(t time.Time) string {
	inverted := math.MaxInt64 - t.UnixNano()
	return fmt.Sprintf("%019d", inverted)
}

// CreateActivity stores a new activity with all indexes and trims the
// author's history to domain.MaxActivitiesPerUser, all in one transaction.
// Eviction keeps the newest entries ordered by CreatedAt, then ID.
func (s *Store) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("marshaling activity: %w", err)
	}

	invertedTS := invertedTimestamp(activity.CreatedAt)

	err = s.update(func(txn *badger.Txn) error {
		// Primary key: activity:{id} → Activity JSON
		primaryKey := []byte(activityPrefix + activity.ID)
		if err := txn.Set(primaryKey, data); err != nil {
			return fmt.Errorf("setting primary key: %w", err)
		}

		// Time index: activity:idx:time:{inverted_timestamp}:{id} → "" (key-only)
		// This allows scanning newest-first without reverse iteration
		timeKey := []byte(activityIdxTimePrefix + invertedTS + ":" + activity.ID)
		if err := txn.Set(timeKey, []byte{}); err != nil {
			return fmt.Errorf("setting time index: %w", err)
		}

		// User index: activity:idx:user:{userId}:{inverted_timestamp}:{id} → ""
		userKey := []byte(activityIdxUserPrefix + activity.UserID + ":" + invertedTS + ":" + activity.ID)
		if err := txn.Set(userKey, []byte{}); err != nil {
			return fmt.Errorf("setting user index: %w", err)
		}

		return s.trimUserActivities(txn, activity.UserID)
	})
	if err != nil {
		return err
	}

	if s.eventEmitter != nil {
		s.eventEmitter.Emit(sse.NewActivityEvent(activity))
	}

	return nil
}

// activityRef is a user-index entry collected during trimming.
type activityRef struct {
	id         string
	invertedTS string
}

// trimUserActivities evicts a user's oldest activities beyond the retention
// cap. Runs inside the insert transaction so a crash can never leave the
// user over cap. Key order alone cannot break CreatedAt ties the right way
// round, so refs are sorted explicitly before cutting.
func (s *Store) trimUserActivities(txn *badger.Txn, userID string) error {
	indexPrefix := []byte(activityIdxUserPrefix + userID + ":")

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = indexPrefix

	var refs []activityRef

	it := txn.NewIterator(opts)
	for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
		key := string(it.Item().Key())
		// Key format: activity:idx:user:{userId}:{inverted_ts}:{id}
		if len(key) <= len(string(indexPrefix))+20 {
			continue
		}
		refs = append(refs, activityRef{
			invertedTS: key[len(indexPrefix) : len(indexPrefix)+19],
			id:         key[len(indexPrefix)+20:],
		})
	}
	it.Close()

	if len(refs) <= domain.MaxActivitiesPerUser {
		return nil
	}

	// Newest first: smallest inverted timestamp, then highest ID.
	slices.SortFunc(refs, func(a, b activityRef) int {
		if c := strings.Compare(a.invertedTS, b.invertedTS); c != 0 {
			return c
		}
		return strings.Compare(b.id, a.id)
	})

	for _, ref := range refs[domain.MaxActivitiesPerUser:] {
		userKey := []byte(activityIdxUserPrefix + userID + ":" + ref.invertedTS + ":" + ref.id)
		timeKey := []byte(activityIdxTimePrefix + ref.invertedTS + ":" + ref.id)
		primaryKey := []byte(activityPrefix + ref.id)

		for _, key := range [][]byte{userKey, timeKey, primaryKey} {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("evicting activity %s: %w", ref.id, err)
			}
		}
	}

	return nil
}

// GetActivity retrieves a single activity by ID.
func (s *Store) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var activity domain.Activity
	err := s.get([]byte(activityPrefix+id), &activity)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("activity %s: %w", id, ErrActivityNotFound)
		}
		return nil, fmt.Errorf("getting activity %s: %w", id, err)
	}

	return &activity, nil
}

// GetActivitiesFeed retrieves the global activity feed sorted by CreatedAt
// descending. Used for admin and operational views; user feeds go through
// GetFeedActivities.
func (s *Store) GetActivitiesFeed(ctx context.Context, limit int) ([]*domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var activities []*domain.Activity

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // Key-only index, no values to fetch
		opts.Prefix = []byte(activityIdxTimePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(activityIdxTimePrefix)); it.ValidForPrefix([]byte(activityIdxTimePrefix)); it.Next() {
			if len(activities) >= limit {
				break
			}

			// Extract activity ID from key: activity:idx:time:{inverted_ts}:{id}
			key := string(it.Item().Key())
			activityID := extractActivityIDFromTimeKey(key)
			if activityID == "" {
				continue
			}

			activity, err := s.getActivityInTxn(txn, activityID)
			if err != nil {
				continue
			}
			activities = append(activities, activity)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("fetching activity feed: %w", err)
	}

	return activities, nil
}

// GetUserActivities retrieves activities for a specific user sorted by CreatedAt descending.
func (s *Store) GetUserActivities(ctx context.Context, userID string, limit int) ([]*domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var activities []*domain.Activity
	indexPrefix := []byte(activityIdxUserPrefix + userID + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = indexPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			if len(activities) >= limit {
				break
			}

			key := string(it.Item().Key())
			activityID := extractActivityIDFromUserKey(key, userID)
			if activityID == "" {
				continue
			}

			activity, err := s.getActivityInTxn(txn, activityID)
			if err != nil {
				continue
			}
			activities = append(activities, activity)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("fetching user activities: %w", err)
	}

	return activities, nil
}

// GetFeedActivities merges the activity logs of the given users into a
// single feed: the top limit entries overall, sorted by CreatedAt
// descending with ID descending as tiebreak. Each user's index is scanned
// at most limit deep since no more than that can survive the merge.
func (s *Store) GetFeedActivities(ctx context.Context, userIDs []string, limit int) ([]*domain.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged []*domain.Activity

	err := s.db.View(func(txn *badger.Txn) error {
		for _, userID := range userIDs {
			indexPrefix := []byte(activityIdxUserPrefix + userID + ":")

			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = indexPrefix

			it := txn.NewIterator(opts)

			count := 0
			for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
				if count >= limit {
					break
				}

				key := string(it.Item().Key())
				activityID := extractActivityIDFromUserKey(key, userID)
				if activityID == "" {
					continue
				}

				activity, err := s.getActivityInTxn(txn, activityID)
				if err != nil {
					continue
				}
				merged = append(merged, activity)
				count++
			}
			it.Close()
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("fetching feed activities: %w", err)
	}

	slices.SortFunc(merged, func(a, b *domain.Activity) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}

	return merged, nil
}

// getActivityInTxn retrieves an activity within an existing transaction.
func (s *Store) getActivityInTxn(txn *badger.Txn, id string) (*domain.Activity, error) {
	item, err := txn.Get([]byte(activityPrefix + id))
	if err != nil {
		return nil, err
	}

	var activity domain.Activity
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &activity)
	})
	if err != nil {
		return nil, err
	}

	return &activity, nil
}

// extractActivityIDFromTimeKey extracts activity ID from time index key.
// Key format: activity:idx:time:{inverted_ts}:{id}.
func extractActivityIDFromTimeKey(key string) string {
	const prefix = activityIdxTimePrefix
	if len(key) <= len(prefix)+20 { // 19 digits + colon
		return ""
	}
	// Skip prefix and inverted timestamp (19 digits) and colon
	return key[len(prefix)+20:]
}

// extractActivityIDFromUserKey extracts activity ID from user index key.
// Key format: activity:idx:user:{userId}:{inverted_ts}:{id}.
func extractActivityIDFromUserKey(key, userID string) string {
	prefix := activityIdxUserPrefix + userID + ":"
	if len(key) <= len(prefix)+20 {
		return ""
	}
	return key[len(prefix)+20:]
}
