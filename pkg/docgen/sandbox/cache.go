package sandbox

import (
	"container/list"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// CacheConfig contains configuration options for the program cache
type CacheConfig struct {
	// MaxSize is the maximum number of compiled programs. 0 disables caching.
	MaxSize int
	// TTL is the time-to-live of a compiled program. 0 means no expiration.
	TTL time.Duration
}

// ProgramCache keeps compiled expressions keyed by ProgramKey.
type ProgramCache struct {
	mu     sync.Mutex
	cache  map[string]*cacheEntry
	lru    *list.List
	config CacheConfig
}

type cacheEntry struct {
	key     string
	program *vm.Program
	expiry  time.Time
	element *list.Element
}

// NewProgramCache creates a program cache with the given configuration
func NewProgramCache(config CacheConfig) *ProgramCache {
	return &ProgramCache{
		cache:  make(map[string]*cacheEntry),
		lru:    list.New(),
		config: config,
	}
}

// Program returns source compiled against env, compiling on a miss. A nil
// cache compiles every time.
func (pc *ProgramCache) Program(source string, env map[string]any, strict bool) (*vm.Program, error) {
	key := ProgramKey(source, env, strict)
	if program, ok := pc.Get(key); ok {
		return program, nil
	}
	program, err := compile(source, env, strict)
	if err != nil {
		return nil, err
	}
	pc.Set(key, program)
	return program, nil
}

// ProgramKey identifies a compiled program. The checker types every name in
// the environment, so the key records the type each name had at compile time.
func ProgramKey(source string, env map[string]any, strict bool) string {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	if strict {
		b.WriteString("strict\x00")
	}
	b.WriteString(source)
	for _, name := range names {
		b.WriteString("\x00")
		b.WriteString(name)
		b.WriteByte(':')
		if t := reflect.TypeOf(env[name]); t != nil {
			b.WriteString(t.String())
		} else {
			b.WriteString("nil")
		}
	}
	return b.String()
}

// compile checks source against env. Names that env lacks evaluate to nil
// unless strict is set. Data fields shadow expr builtins of the same name.
func compile(source string, env map[string]any, strict bool) (*vm.Program, error) {
	opts := []expr.Option{expr.Env(env)}
	if !strict {
		// must follow Env, which turns strict checking on
		opts = append(opts, expr.AllowUndefinedVariables())
	}
	return expr.Compile(source, opts...)
}

// Get retrieves a program without compiling.
func (pc *ProgramCache) Get(key string) (*vm.Program, bool) {
	if pc == nil {
		return nil, false
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()

	entry, exists := pc.cache[key]
	if !exists {
		return nil, false
	}
	if pc.config.TTL > 0 && time.Now().After(entry.expiry) {
		pc.removeLocked(entry)
		return nil, false
	}
	pc.lru.MoveToFront(entry.element)
	return entry.program, true
}

// Set stores a program, evicting the least recently used one when full.
func (pc *ProgramCache) Set(key string, program *vm.Program) {
	if pc == nil || pc.config.MaxSize <= 0 {
		return
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()

	var expiry time.Time
	if pc.config.TTL > 0 {
		expiry = time.Now().Add(pc.config.TTL)
	}

	if existing, exists := pc.cache[key]; exists {
		existing.program = program
		existing.expiry = expiry
		pc.lru.MoveToFront(existing.element)
		return
	}

	for pc.lru.Len() >= pc.config.MaxSize {
		oldest := pc.lru.Back()
		if oldest == nil {
			break
		}
		pc.removeLocked(oldest.Value.(*cacheEntry))
	}

	entry := &cacheEntry{key: key, program: program, expiry: expiry}
	entry.element = pc.lru.PushFront(entry)
	pc.cache[key] = entry
}

// Remove drops one program.
func (pc *ProgramCache) Remove(key string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if entry, exists := pc.cache[key]; exists {
		pc.removeLocked(entry)
	}
}

// Clear drops every program.
func (pc *ProgramCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cache = make(map[string]*cacheEntry)
	pc.lru = list.New()
}

// Size returns the number of cached programs.
func (pc *ProgramCache) Size() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return len(pc.cache)
}

func (pc *ProgramCache) removeLocked(entry *cacheEntry) {
	delete(pc.cache, entry.key)
	pc.lru.Remove(entry.element)
}
