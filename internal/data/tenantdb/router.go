package tenantdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/nahuelRo/first-plug-api/internal/data/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/data/projections"
	"github.com/nahuelRo/first-plug-api/internal/data/repos"
	domainagg "github.com/nahuelRo/first-plug-api/internal/domain/aggregates"
	"github.com/nahuelRo/first-plug-api/internal/domain/inventory"
	"github.com/nahuelRo/first-plug-api/internal/observability"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

var (
	ErrInvalidTenantName = errors.New("invalid tenant name")
	ErrRouterClosed      = errors.New("storage router closed")
)

var validTenantName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,48}$`)

type Config struct {
	Prefix        string
	Fallback      string
	TTL           time.Duration
	MaxHandles    int
	SweepInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Prefix == "" {
		c.Prefix = "tenant_"
	}
	if c.Fallback == "" {
		c.Fallback = "invited"
	}
	if c.TTL <= 0 {
		c.TTL = 30 * time.Minute
	}
	if c.MaxHandles <= 0 {
		c.MaxHandles = 256
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = c.TTL / 4
		if c.SweepInterval > time.Minute {
			c.SweepInterval = time.Minute
		}
	}
	return c
}

// Scope is a tenant-bound view of storage. Callers must Release it when done.
type Scope struct {
	TenantName string
	DBName     string
	DB         *gorm.DB
	TxOptions  *sql.TxOptions

	Assets  repos.AssetRepo
	Members repos.MemberRepo
	Teams   repos.TeamRepo

	Relocation      domainagg.AssetRelocationAggregate
	MemberLifecycle domainagg.MemberLifecycleAggregate
	TeamLifecycle   domainagg.TeamLifecycleAggregate
	Catalog         projections.AssetCatalogProjector

	entry   *entry
	router  *Router
	release sync.Once
}

// Release returns the handle to the router. Calling it more than once is a no-op.
func (s *Scope) Release() {
	if s == nil || s.router == nil {
		return
	}
	s.release.Do(func() { s.router.release(s.entry) })
}

type entry struct {
	dbName   string
	db       *gorm.DB
	openedAt time.Time
	refs     int
	evicted  bool

	inv        repos.Inventory
	relocation domainagg.AssetRelocationAggregate
	members    domainagg.MemberLifecycleAggregate
	teams      domainagg.TeamLifecycleAggregate
	catalog    projections.AssetCatalogProjector
}

// Router maps a tenant name to its own database handle. Handles are opened lazily,
// cached with a capped lifetime, and closed only after their last scope is released.
type Router struct {
	opener  Opener
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics
	catalog *inventory.Catalog
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
	group   singleflight.Group
}

type RouterDeps struct {
	Opener  Opener
	Config  Config
	Log     *logger.Logger
	Metrics *observability.Metrics
	Catalog *inventory.Catalog
	Clock   func() time.Time
}

func NewRouter(deps RouterDeps) *Router {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Router{
		opener:  deps.Opener,
		cfg:     deps.Config.withDefaults(),
		log:     deps.Log.With("component", "StorageRouter"),
		metrics: deps.Metrics,
		catalog: deps.Catalog,
		now:     deps.Clock,
		entries: map[string]*entry{},
	}
}

// DatabaseName maps a tenant name to its database. An empty name routes to the fallback database.
func (r *Router) DatabaseName(tenantName string) (string, error) {
	tenantName = strings.TrimSpace(tenantName)
	if tenantName == "" {
		return r.cfg.Fallback, nil
	}
	if !validTenantName.MatchString(tenantName) {
		return "", ErrInvalidTenantName
	}
	return r.cfg.Prefix + tenantName, nil
}

// Acquire returns a scope bound to tenantName's database, opening it on first use.
func (r *Router) Acquire(ctx context.Context, tenantName string) (*Scope, error) {
	dbName, err := r.DatabaseName(tenantName)
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < 3; attempt++ {
		if e, err := r.acquireCached(dbName); err != nil || e != nil {
			if err != nil {
				return nil, err
			}
			r.metrics.IncTenantHandleEvent("reuse")
			return r.scope(tenantName, e), nil
		}

		// concurrent first opens share one Open; a cancelled waiter must not abort it for the rest
		openCtx := context.WithoutCancel(ctx)
		ch := r.group.DoChan(dbName, func() (any, error) {
			return r.open(openCtx, dbName)
		})
		var res singleflight.Result
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res = <-ch:
		}
		if res.Err != nil {
			return nil, res.Err
		}
		e := res.Val.(*entry)
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return nil, ErrRouterClosed
		}
		if !e.evicted {
			e.refs++
			r.mu.Unlock()
			return r.scope(tenantName, e), nil
		}
		r.mu.Unlock()
	}
	return nil, fmt.Errorf("tenant database %s evicted while opening", dbName)
}

func (r *Router) acquireCached(dbName string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRouterClosed
	}
	e := r.entries[dbName]
	if e == nil {
		return nil, nil
	}
	if r.expired(e) {
		r.evictLocked(e, "expire")
		return nil, nil
	}
	e.refs++
	return e, nil
}

func (r *Router) open(ctx context.Context, dbName string) (*entry, error) {
	r.mu.Lock()
	if e := r.entries[dbName]; e != nil && !r.expired(e) {
		r.mu.Unlock()
		return e, nil
	}
	r.mu.Unlock()

	start := time.Now()
	gdb, err := r.opener.Open(ctx, dbName)
	if err != nil {
		r.metrics.IncTenantHandleEvent("open_error")
		r.log.Error("Failed to open tenant database", "database", dbName, "error", err)
		return nil, err
	}
	e := r.newEntry(dbName, gdb)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		_ = closeHandle(gdb)
		return nil, ErrRouterClosed
	}
	if old := r.entries[dbName]; old != nil {
		r.evictLocked(old, "replace")
	}
	r.entries[dbName] = e
	r.enforceCapLocked(dbName)
	r.metrics.IncTenantHandleEvent("open")
	r.metrics.SetTenantHandles(len(r.entries))
	r.log.Info("Opened tenant database", "database", dbName, "took", time.Since(start).String())
	return e, nil
}

func (r *Router) newEntry(dbName string, gdb *gorm.DB) *entry {
	inv := repos.NewInventory(gdb, r.log)
	base := aggregates.BaseDeps{
		DB:        gdb,
		Log:       r.log.With("database", dbName),
		Hooks:     aggregates.NewObservabilityHooks(r.metrics, dbName),
		TxOptions: r.opener.TxOptions(),
	}
	store := aggregates.NewAssetLocationStore(inv.Assets, inv.Members, aggregates.NewCASGuard(gdb), nil)
	return &entry{
		dbName:   dbName,
		db:       gdb,
		openedAt: r.now(),
		inv:      inv,
		relocation: aggregates.NewAssetRelocationAggregate(aggregates.AssetRelocationDeps{
			Base: base, Assets: inv.Assets, Members: inv.Members, Store: store, Catalog: r.catalog,
		}),
		members: aggregates.NewMemberLifecycleAggregate(aggregates.MemberLifecycleDeps{
			Base: base, Assets: inv.Assets, Members: inv.Members, Teams: inv.Teams, Store: store,
		}),
		teams: aggregates.NewTeamLifecycleAggregate(aggregates.TeamLifecycleDeps{
			Base: base, Members: inv.Members, Teams: inv.Teams,
		}),
		catalog: projections.NewAssetCatalogProjector(inv.Assets, inv.Members, r.catalog, r.log),
	}
}

func (r *Router) scope(tenantName string, e *entry) *Scope {
	return &Scope{
		TenantName:      strings.TrimSpace(tenantName),
		DBName:          e.dbName,
		DB:              e.db,
		TxOptions:       r.opener.TxOptions(),
		Assets:          e.inv.Assets,
		Members:         e.inv.Members,
		Teams:           e.inv.Teams,
		Relocation:      e.relocation,
		MemberLifecycle: e.members,
		TeamLifecycle:   e.teams,
		Catalog:         e.catalog,
		entry:           e,
		router:          r,
	}
}

func (r *Router) release(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.refs > 0 {
		e.refs--
	}
	if e.evicted && e.refs == 0 {
		r.closeLocked(e)
	}
}

func (r *Router) expired(e *entry) bool {
	return r.now().Sub(e.openedAt) >= r.cfg.TTL
}

// evictLocked drops e from the cache; the handle closes now or on its last release.
func (r *Router) evictLocked(e *entry, reason string) {
	if r.entries[e.dbName] == e {
		delete(r.entries, e.dbName)
	}
	if e.evicted {
		return
	}
	e.evicted = true
	r.metrics.IncTenantHandleEvent("evict_" + reason)
	r.metrics.SetTenantHandles(len(r.entries))
	r.log.Debug("Evicted tenant database", "database", e.dbName, "reason", reason, "refs", e.refs)
	if e.refs == 0 {
		r.closeLocked(e)
	}
}

func (r *Router) closeLocked(e *entry) {
	if e.db == nil {
		return
	}
	if err := closeHandle(e.db); err != nil {
		r.log.Warn("Failed to close tenant database", "database", e.dbName, "error", err)
	}
	e.db = nil
	r.metrics.IncTenantHandleEvent("close")
}

// enforceCapLocked evicts the oldest unreferenced entries above the cap, never keep.
func (r *Router) enforceCapLocked(keep string) {
	for len(r.entries) > r.cfg.MaxHandles {
		var oldest *entry
		for name, e := range r.entries {
			if name == keep || e.refs > 0 {
				continue
			}
			if oldest == nil || e.openedAt.Before(oldest.openedAt) {
				oldest = e
			}
		}
		if oldest == nil {
			return
		}
		r.evictLocked(oldest, "capacity")
	}
}

// Sweep evicts every expired entry.
func (r *Router) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if r.expired(e) {
			r.evictLocked(e, "expire")
		}
	}
}

// Start runs the expiry janitor until ctx is done.
func (r *Router) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}

// Len returns the number of cached handles.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close closes every handle, referenced or not. Acquire fails afterwards.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	for _, e := range r.entries {
		e.evicted = true
		r.closeLocked(e)
	}
	r.entries = map[string]*entry{}
	r.metrics.SetTenantHandles(0)
	return nil
}
