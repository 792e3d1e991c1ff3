package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "rejuvena-session||"
	tokensSetKey     = "rejuvena-sessions"
)

var ErrSessionNotFound = errors.New("session not found")

// Session binds a token to the identity it was minted for.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store keeps sessions in redis: one JSON value per token, plus a set of all
// live tokens so stale ones can be swept.
type Store struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewStore(ttl time.Duration, redisClient *redis.Client) *Store {
	return &Store{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

func (s *Store) Add(ctx context.Context, sess Session) error {
	sessBytes, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	sessionKey := sessionKeyPrefix + sess.Token
	if err := s.redisClient.Set(ctx, sessionKey, string(sessBytes), 0).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	// add token to the set of live sessions
	if err := s.redisClient.SAdd(ctx, tokensSetKey, sess.Token).Err(); err != nil {
		return fmt.Errorf("register session token: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	sessionKey := sessionKeyPrefix + token
	cmd := s.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(cmd.Val()), &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &sess, nil
}

// Remove deletes the session. It reports whether a session was actually there.
func (s *Store) Remove(ctx context.Context, token string) (bool, error) {
	sessionKey := sessionKeyPrefix + token
	cmdDel := s.redisClient.Del(ctx, sessionKey)
	if err := cmdDel.Err(); err != nil {
		return false, err
	}

	if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, err
	}

	return cmdDel.Val() > 0, nil
}

// IsLogged reports whether the token belongs to a live session.
func (s *Store) IsLogged(ctx context.Context, token string) (bool, error) {
	_, err := s.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ScanAndClean runs through all sessions and removes the expired ones
func (s *Store) ScanAndClean(ctx context.Context) {
	cmd := s.redisClient.SMembers(ctx, tokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! session store, scan and clean, get sessions: %s", err)
		return
	}

	sessionTokens := cmd.Val()
	if len(sessionTokens) == 0 {
		log.Warnln("=> session store, scan and clean abort, no sessions")
		return
	}

	log.Warnf("=> session store, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		sess, err := s.Get(ctx, token)
		if err != nil {
			log.Errorf("=> session store, scan and clean token %s: %s", token, err)
			if errors.Is(err, ErrSessionNotFound) {
				// value gone but token still in the set
				toRemove = append(toRemove, token)
			}
			continue
		}

		if time.Since(sess.CreatedAt) > s.ttl {
			log.Warnf("=>\twill clean the session with token: %s", token)
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if _, err := s.Remove(ctx, token); err != nil {
			log.Errorf("=> session store, clean token %s: %s", token, err)
		}
	}
}
