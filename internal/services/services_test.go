package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/nahuelRo/first-plug-api/internal/data/repos/testutil"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims TenantClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func validClaims(tenant string) TenantClaims {
	return TenantClaims{
		TenantName: tenant,
		Email:      " Admin@Acme.io ",
		HolderID:   "64b0c0ffee",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestJWTVerifier(t *testing.T) {
	v := NewJWTVerifier(testSecret, 0, testutil.Logger(t))

	expired := validClaims("acme")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	cases := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid", token: signToken(t, jwt.SigningMethodHS256, testSecret, validClaims("acme"))},
		{name: "empty", token: "", wantErr: true},
		{name: "garbage", token: "not.a.jwt", wantErr: true},
		{name: "wrong_secret", token: signToken(t, jwt.SigningMethodHS256, "other", validClaims("acme")), wantErr: true},
		{name: "wrong_alg", token: signToken(t, jwt.SigningMethodHS512, testSecret, validClaims("acme")), wantErr: true},
		{name: "expired", token: signToken(t, jwt.SigningMethodHS256, testSecret, expired), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := v.Verify(tc.token)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidCredential) {
					t.Fatalf("Verify: want=%v got=%v", ErrInvalidCredential, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if claims.TenantName != "acme" || claims.Email != "admin@acme.io" || claims.HolderID != "64b0c0ffee" {
				t.Fatalf("claims: got=%+v", claims)
			}
		})
	}
}

type fakeDirectory struct {
	mu      sync.Mutex
	tenants map[string]bool
	err     error
	calls   int
}

func (d *fakeDirectory) Exists(ctx context.Context, tenantName string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return false, d.err
	}
	return d.tenants[tenantName], nil
}

type mapCache struct {
	keys   map[string]time.Duration
	getErr error
}

func (c *mapCache) Get(ctx context.Context, key string) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	_, ok := c.keys[key]
	return ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, ttl time.Duration) error {
	c.keys[key] = ttl
	return nil
}

func TestCachedTenantDirectoryCachesPositiveOnly(t *testing.T) {
	inner := &fakeDirectory{tenants: map[string]bool{"acme": true}}
	cache := &mapCache{keys: map[string]time.Duration{}}
	d := newCachedTenantDirectory(inner, cache, 30*time.Second, nil, testutil.Logger(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := d.Exists(ctx, "acme")
		if err != nil || !ok {
			t.Fatalf("Exists(acme): ok=%v err=%v", ok, err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls after hits: want=1 got=%d", inner.calls)
	}
	if ttl := cache.keys[tenantCacheKey("acme")]; ttl != 30*time.Second {
		t.Fatalf("cached ttl: want=%v got=%v", 30*time.Second, ttl)
	}

	for i := 0; i < 2; i++ {
		if ok, err := d.Exists(ctx, "globex"); err != nil || ok {
			t.Fatalf("Exists(globex): ok=%v err=%v", ok, err)
		}
	}
	if inner.calls != 3 {
		t.Fatalf("negative answers must not be cached: calls=%d", inner.calls)
	}
	if _, ok := cache.keys[tenantCacheKey("globex")]; ok {
		t.Fatalf("negative answer cached")
	}
}

func TestCachedTenantDirectoryDegradesOnCacheError(t *testing.T) {
	inner := &fakeDirectory{tenants: map[string]bool{"acme": true}}
	cache := &mapCache{keys: map[string]time.Duration{}, getErr: errors.New("connection refused")}
	d := newCachedTenantDirectory(inner, cache, time.Minute, nil, testutil.Logger(t))

	ok, err := d.Exists(context.Background(), "acme")
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls: want=1 got=%d", inner.calls)
	}
}

func TestRedisTenantDirectory(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()
	name := "redis-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { _ = rdb.Del(ctx, tenantCacheKey(name)).Err() })

	inner := &fakeDirectory{tenants: map[string]bool{name: true}}
	d := NewCachedTenantDirectory(inner, rdb, time.Minute, nil, testutil.Logger(t))
	for i := 0; i < 2; i++ {
		if ok, err := d.Exists(ctx, name); err != nil || !ok {
			t.Fatalf("Exists: ok=%v err=%v", ok, err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls: want=1 got=%d", inner.calls)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
		"abc.def.ghi":  "",
	}
	for in, want := range cases {
		if got := BearerToken(in); got != want {
			t.Fatalf("BearerToken(%q): want=%q got=%q", in, want, got)
		}
	}
}
