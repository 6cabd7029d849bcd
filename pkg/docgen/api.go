package docgen

import (
	"github.com/wxjw/Vanka/pkg/docgen/bracket"
	"github.com/wxjw/Vanka/pkg/docgen/sandbox"
)

// Engine renders DOCX templates and stamps PDFs. An Engine is safe for
// concurrent use; all render state is per call.
type Engine struct {
	config      *Config
	functions   *sandbox.Registry
	cache       *sandbox.ProgramCache
	catalog     *Catalog
	logger      *Logger
	singularize bracket.SingularizeFunc
}

// New creates an engine with the global configuration.
func New() *Engine {
	return NewWithConfig(GetGlobalConfig())
}

// NewWithConfig creates an engine with a custom configuration.
func NewWithConfig(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config:    config,
		functions: sandbox.NewDefaultRegistry(),
		cache:     sandbox.NewProgramCache(sandbox.CacheConfig{MaxSize: config.CacheMaxSize, TTL: config.CacheTTL}),
		logger:    GetLogger(),
	}
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Catalog returns the template catalog, or nil.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// RegisterFunction makes fn callable from template expressions.
func (e *Engine) RegisterFunction(fn sandbox.Function) error {
	return e.functions.Register(fn)
}

// ClearCache drops all compiled expressions.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

func (e *Engine) runtime() *sandbox.Runtime {
	mode := sandbox.ModeSandboxed
	if e.config.NoSandbox {
		mode = sandbox.ModeDirect
	}
	return sandbox.NewRuntime(sandbox.Options{
		Mode:      mode,
		Strict:    e.config.StrictMode,
		Cache:     e.cache,
		Functions: e.functions,
	})
}

func (e *Engine) compiler() *bracket.Compiler {
	return &bracket.Compiler{
		Singularize: e.singularize,
		StrictClose: e.config.StrictMode,
	}
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that sets the engine configuration and
// resizes the expression cache to match. A nil config means DefaultConfig.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		if config == nil {
			config = DefaultConfig()
		}
		e.config = config
		e.cache = sandbox.NewProgramCache(sandbox.CacheConfig{MaxSize: config.CacheMaxSize, TTL: config.CacheTTL})
	}
}

// WithCatalog returns an option that sets the catalog used by RenderByKey.
func WithCatalog(catalog *Catalog) Option {
	return func(e *Engine) {
		e.catalog = catalog
	}
}

// WithFunction returns an option that registers a custom function.
func WithFunction(fn sandbox.Function) Option {
	return func(e *Engine) {
		if err := e.functions.Register(fn); err != nil {
			e.logger.Warn("function not registered: %v", err)
		}
	}
}

// WithFunctions returns an option that replaces the function registry.
func WithFunctions(registry *sandbox.Registry) Option {
	return func(e *Engine) {
		e.functions = registry
	}
}

// WithLogger returns an option that sets the engine logger.
func WithLogger(logger *Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSingularize returns an option that replaces the rule deriving loop
// aliases from bracket loop names.
func WithSingularize(fn bracket.SingularizeFunc) Option {
	return func(e *Engine) {
		e.singularize = fn
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	engine := New()
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// DefaultEngine is the engine used by the package-level functions.
var DefaultEngine = New()
