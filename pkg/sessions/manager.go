package sessions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gomodule/redigo/redis"

	. "messenger/pkg/common"
	"messenger/pkg/logger"
	"messenger/pkg/user"
)

const (
	CookieName = "jwt"

	sessionTTL   = 90 * 24 * time.Hour
	prolongAfter = 24 * time.Hour
)

type (
	sessionKey string

	// Pool hands out one Redis connection per operation; *redis.Pool fits.
	Pool interface {
		Get() redis.Conn
	}

	SessionManager struct {
		secret []byte
		pool   Pool
		now    func() time.Time
	}

	// TokenUser is the part of the user stored inside the token.
	TokenUser struct {
		Id       string `json:"id"`
		FullName string `json:"fullName"`
	}

	jwtClaims struct {
		User TokenUser `json:"user"`
		jwt.StandardClaims
	}
)

const SessionKey sessionKey = "authenticatedUser"

var ErrNoAuth = errors.New("sessions: no session found")

func NewSessionManager(secret string, pool Pool) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		pool:   pool,
		now:    time.Now,
	}
}

// TokenFromHeader strips the Bearer prefix; the cookie value is used as is.
func TokenFromHeader(authHeader string) string {
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// UserFromToken returns the user from a valid JWT whose session is still
// registered in Redis.
func (sm *SessionManager) UserFromToken(tokenString string) (*TokenUser, error) {
	if tokenString == "" {
		return nil, errors.New("sessions: token not found")
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sessions: unexpected signing method: %v", token.Header["alg"])
			}
			return sm.secret, nil
		})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok {
		return nil, errors.New("sessions: can't cast token to claim")
	}
	if !token.Valid {
		return nil, errors.New("sessions: token is not valid")
	}

	if _, err := sm.CheckRedis(claims.User.Id, claims.Id); err != nil {
		return nil, fmt.Errorf("sessions: Redis session is not valid: %w", err)
	}

	return &claims.User, nil
}

// CleanupUserSessions goes through all user sessions and removes expired ones.
func (sm *SessionManager) CleanupUserSessions(userId string) error {
	conn := sm.pool.Get()
	defer conn.Close()

	sessions, err := redis.StringMap(conn.Do("HGETALL", userId))
	if err != nil {
		return fmt.Errorf("sessions: can't HGETALL user sessions from Redis: %w", err)
	}

	nowTs := sm.now().Unix()
	for sessId, exp := range sessions {
		expTs, _ := strconv.ParseInt(exp, 10, 64)
		if nowTs > expTs {
			if _, err := conn.Do("HDEL", userId, sessId); err != nil {
				return fmt.Errorf("sessions: can't HDEL session %s: %w", sessId, err)
			}
			logger.Log(context.Background()).Infof("sessions: session %s removed (expired at %s)", sessId, exp)
		}
	}

	return nil
}

func (sm *SessionManager) CheckRedis(userId, sessionId string) (bool, error) {
	conn := sm.pool.Get()
	defer conn.Close()

	expirationData, err := redis.Bytes(conn.Do("HGET", userId, sessionId))
	if err != nil {
		return false, fmt.Errorf("sessions: can't HGET from Redis: %w", err)
	}

	expiredTs, _ := strconv.ParseInt(string(expirationData), 10, 64)
	nowTs := sm.now().Unix()
	if nowTs > expiredTs {
		return false, errors.New("sessions: session has been expired")
	}

	// Keep active users logged in: push the expiration when less than a day is left.
	if expiredTs-nowTs < int64(prolongAfter.Seconds()) {
		newExpDate := sm.now().Add(sessionTTL).Unix()
		if err := sm.AddToRedis(userId, sessionId, newExpDate); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (sm *SessionManager) AddToRedis(userId, sessionId string, exp int64) error {
	conn := sm.pool.Get()
	defer conn.Close()

	if _, err := conn.Do("HSET", userId, sessionId, exp); err != nil {
		return fmt.Errorf("sessions: failed HSET to Redis: %w", err)
	}
	return nil
}

// CreateToken registers a new session. Accounts log in through the auth
// service; this is used by the seeder and by tests.
func (sm *SessionManager) CreateToken(u *user.User) (string, error) {
	if err := sm.CleanupUserSessions(u.Id); err != nil {
		return "", err
	}

	sessionID := RandStringRunes(10)
	now := sm.now()
	data := jwtClaims{
		User: TokenUser{Id: u.Id, FullName: u.FullName},
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(sessionTTL).Unix(),
			IssuedAt:  now.Unix(),
			Id:        sessionID,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, data).SignedString(sm.secret)
	if err != nil {
		return "", err
	}

	if err := sm.AddToRedis(u.Id, sessionID, data.ExpiresAt); err != nil {
		return ``, err
	}

	return token, nil
}

func WithAuthUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, SessionKey, u)
}

func GetAuthUser(ctx context.Context) (*user.User, error) {
	u, ok := ctx.Value(SessionKey).(*user.User)
	if !ok || u == nil {
		return nil, ErrNoAuth
	}
	return u, nil
}
