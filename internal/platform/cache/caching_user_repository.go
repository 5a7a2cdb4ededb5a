// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"acquisitions/internal/feature/users/domain/entity"
	"acquisitions/internal/feature/users/usecase"
)

// CachingUserRepository decorates a UserRepository with Redis caching of
// FindByID and List. Writes go to the inner repository first and then drop
// the affected keys.
//
// Cached users carry no password hash: callers that need the hash must use
// FindByEmail, which always reads through.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// Compile-time check to ensure CachingUserRepository implements UserRepository.
var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// cachedUser is the Redis representation of a user.
type cachedUser struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      entity.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func toCached(u *entity.User) cachedUser {
	return cachedUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func (c cachedUser) toEntity() entity.User {
	return entity.User{ID: c.ID, Name: c.Name, Email: c.Email, Role: c.Role, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
// A nil rdb disables caching.
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "users"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create inserts the user and drops the cached list.
func (c *CachingUserRepository) Create(ctx context.Context, u *entity.User) error {
	if err := c.inner.Create(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx, c.listKey())
	return nil
}

// FindByEmail always reads through to the inner repository.
func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.inner.FindByEmail(ctx, email)
}

// FindByID checks the cache first, then falls back to the inner repository.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.idKey(id)

	// 1) Check cache
	var hit cachedUser
	if c.get(ctx, key, &hit) {
		u := hit.toEntity()
		return &u, nil
	}

	// 2) Fallback to database
	u, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	c.set(ctx, key, toCached(u))
	return u, nil
}

// List checks the cache first, then falls back to the inner repository.
func (c *CachingUserRepository) List(ctx context.Context) ([]entity.User, error) {
	if c.rdb == nil {
		return c.inner.List(ctx)
	}

	key := c.listKey()

	var hit []cachedUser
	if c.get(ctx, key, &hit) {
		out := make([]entity.User, 0, len(hit))
		for _, cu := range hit {
			out = append(out, cu.toEntity())
		}
		return out, nil
	}

	users, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]cachedUser, 0, len(users))
	for i := range users {
		records = append(records, toCached(&users[i]))
	}
	c.set(ctx, key, records)
	return users, nil
}

// Update writes through and drops the user's entry and the list.
func (c *CachingUserRepository) Update(ctx context.Context, u *entity.User) error {
	if err := c.inner.Update(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx, c.idKey(u.ID), c.listKey())
	return nil
}

// Delete removes the user and drops the user's entry and the list.
func (c *CachingUserRepository) Delete(ctx context.Context, id uint) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, c.idKey(id), c.listKey())
	return nil
}

// get decodes key into dst. A corrupted entry is deleted and reported as a miss.
func (c *CachingUserRepository) get(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *CachingUserRepository) set(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

// invalidate deletes keys; cache errors never fail a write.
func (c *CachingUserRepository) invalidate(ctx context.Context, keys ...string) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}

func (c *CachingUserRepository) idKey(id uint) string {
	return c.namespace + ":id:" + strconv.FormatUint(uint64(id), 10)
}

func (c *CachingUserRepository) listKey() string {
	return c.namespace + ":list"
}
