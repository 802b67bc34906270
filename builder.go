package fixauth

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/fixacareer/fixauth/jwt"
	"github.com/fixacareer/fixauth/password"
)

// Builder assembles an [Engine] from its dependencies. All services are
// injected explicitly; the engine holds no ambient global state.
type Builder struct {
	config Config
	redis  *redis.Client

	admins AdminStore
	users  UserStore
	mailer Mailer

	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis attaches the Redis client backing the second-factor attempt
// limiter. Optional: without it the engine runs unlimited.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAdminStore attaches the administrator credential store. Required.
func (b *Builder) WithAdminStore(store AdminStore) *Builder {
	b.admins = store
	return b
}

// WithUserStore attaches the end-user credential store. Required.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithMailer attaches the email dispatcher. Required.
func (b *Builder) WithMailer(mailer Mailer) *Builder {
	b.mailer = mailer
	return b
}

// WithAuditSink attaches an audit sink; defaults to [NoOpSink].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger attaches a structured logger; defaults to slog.Default.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and dependencies and constructs the
// Engine. A Builder can be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if b.admins == nil {
		return nil, errors.New("admin store required")
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.mailer == nil {
		return nil, errors.New("mailer required")
	}

	tokens, err := jwt.NewManager(jwt.Config{
		AccessSecret:    cfg.JWT.AccessSecret,
		RefreshSecret:   cfg.JWT.RefreshSecret,
		AccessTTL:       cfg.JWT.AccessTTL,
		AdminRefreshTTL: cfg.JWT.AdminRefreshTTL,
		UserRefreshTTL:  cfg.JWT.UserRefreshTTL,
		Issuer:          cfg.JWT.Issuer,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(cfg.Password.Cost)
	if err != nil {
		return nil, err
	}

	seeds, err := newSeedCipher(cfg.Seed.Key)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:  cfg,
		admins:  b.admins,
		users:   b.users,
		mailer:  b.mailer,
		tokens:  tokens,
		hasher:  hasher,
		totp:    newTOTPManager(cfg.TOTP),
		seeds:   seeds,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		logger:  logger,
	}
	if b.redis != nil {
		engine.totpLimiter = newTOTPLimiter(b.redis, cfg.TOTP.MaxAttempts, cfg.TOTP.AttemptCooldown)
	}

	b.built = true
	return engine, nil
}
