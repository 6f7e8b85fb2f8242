package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/readnestapp/readnest-server/internal/domain"
)

// Follow storage key prefixes. The edge key embeds both user IDs so the
// duplicate check and the insert hit the same key inside one transaction.
const (
	followPrefix           = "follow:"
	followByFolloweePrefix = "idx:follows:followee:"
)

var (
	// ErrSelfFollow is returned when a user attempts to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrAlreadyFollowing is returned when the follow edge already exists.
	ErrAlreadyFollowing = errors.New("already following this user")
	// ErrNotFollowing is returned when unfollowing a user who is not followed.
	ErrNotFollowing = errors.New("not following this user")
)

// followKey builds the primary edge key: follow:{followerID}:{followeeID}.
func followKey(followerID, followeeID string) []byte {
	return []byte(followPrefix + followerID + ":" + followeeID)
}

// followeeIndexKey builds the reverse index key for follower listings.
func followeeIndexKey(followeeID, followerID string) []byte {
	return []byte(followByFolloweePrefix + followeeID + ":" + followerID)
}

// CreateFollow inserts a follow edge. The existence check and the insert
// run in a single transaction, so concurrent follows of the same pair
// cannot both succeed.
func (s *Store) CreateFollow(ctx context.Context, follow *domain.Follow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if follow.FollowerID == follow.FolloweeID {
		return ErrSelfFollow
	}

	edgeKey := followKey(follow.FollowerID, follow.FolloweeID)
	indexKey := followeeIndexKey(follow.FolloweeID, follow.FollowerID)

	data, err := json.Marshal(follow)
	if err != nil {
		return fmt.Errorf("marshal follow: %w", err)
	}

	return s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(edgeKey)
		if err == nil {
			return ErrAlreadyFollowing
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check follow exists: %w", err)
		}

		if err := txn.Set(edgeKey, data); err != nil {
			return err
		}

		// Reverse index for follower listings (key-only)
		return txn.Set(indexKey, []byte{})
	})
}

// DeleteFollow removes a follow edge. Fails with ErrNotFollowing when the
// edge does not exist.
func (s *Store) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	edgeKey := followKey(followerID, followeeID)
	indexKey := followeeIndexKey(followeeID, followerID)

	return s.update(func(txn *badger.Txn) error {
		_, err := txn.Get(edgeKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFollowing
		}
		if err != nil {
			return fmt.Errorf("check follow exists: %w", err)
		}

		if err := txn.Delete(edgeKey); err != nil {
			return err
		}

		if err := txn.Delete(indexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return nil
	})
}

// IsFollowing reports whether follower follows followee.
func (s *Store) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.exists(followKey(followerID, followeeID))
}

// ListFollowing returns all follow edges originating from followerID.
func (s *Store) ListFollowing(ctx context.Context, followerID string) ([]*domain.Follow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(followPrefix + followerID + ":")
	var follows []*domain.Follow

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var follow domain.Follow
				if unmarshalErr := json.Unmarshal(val, &follow); unmarshalErr != nil {
					return nil //nolint:nilerr // intentionally skip malformed entries
				}
				follows = append(follows, &follow)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}

	return follows, nil
}

// ListFollowers returns all follow edges pointing at followeeID.
func (s *Store) ListFollowers(ctx context.Context, followeeID string) ([]*domain.Follow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(followByFolloweePrefix + followeeID + ":")
	var follows []*domain.Follow

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // Key-only index
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// Key format: idx:follows:followee:{followeeID}:{followerID}
			key := string(it.Item().Key())
			followerID := key[len(prefix):]
			if followerID == "" {
				continue
			}

			item, err := txn.Get(followKey(followerID, followeeID))
			if err != nil {
				continue
			}

			err = item.Value(func(val []byte) error {
				var follow domain.Follow
				if unmarshalErr := json.Unmarshal(val, &follow); unmarshalErr != nil {
					return nil //nolint:nilerr // intentionally skip malformed entries
				}
				follows = append(follows, &follow)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}

	return follows, nil
}

// CountFollowing returns how many users followerID follows.
func (s *Store) CountFollowing(ctx context.Context, followerID string) (int, error) {
	return s.countKeys(ctx, []byte(followPrefix+followerID+":"))
}

// CountFollowers returns how many users follow followeeID.
func (s *Store) CountFollowers(ctx context.Context, followeeID string) (int, error) {
	return s.countKeys(ctx, []byte(followByFolloweePrefix+followeeID+":"))
}

// countKeys counts keys under a prefix without fetching values.
func (s *Store) countKeys(ctx context.Context, prefix []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count keys: %w", err)
	}

	return count, nil
}
