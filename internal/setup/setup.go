package setup

import (
	"github.com/openaudit/openaudit/internal/config"
	"github.com/openaudit/openaudit/internal/handler"
	"github.com/openaudit/openaudit/internal/middleware/bruteforce"
	"github.com/openaudit/openaudit/internal/service"
	"github.com/openaudit/openaudit/internal/storage/pg"
	"github.com/openaudit/openaudit/internal/storage/redis"
	"github.com/openaudit/openaudit/internal/utils"
	"github.com/openaudit/openaudit/internal/utils/email"
)

// Dependencies holds all initialized dependencies.
type Dependencies struct {
	Config  *config.Config
	Storage *pg.Storage
	Redis   *redis.Store
	Auth    *service.Auth
	Guard   *bruteforce.Guard
	Handler *handler.Handler
}

// SetupDependencies initializes everything the API server needs.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	redisStore, err := redis.New(&cfg.Private.Redis)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	mail := email.New(&cfg.Private.Email)
	guard := bruteforce.New(redisStore, cfg.Public.BruteForce)

	auth := service.NewAuth(storage, redisStore, mail,
		&utils.UsernameValidator{}, &utils.PasswordValidator{}, &utils.ProfileValidator{}, cfg)
	documents := service.NewDocuments(storage, &utils.AliasValidator{})
	audits := service.NewAudits(storage)

	h := handler.New(auth, documents, audits, cfg)

	return &Dependencies{
		Config:  cfg,
		Storage: storage,
		Redis:   redisStore,
		Auth:    auth,
		Guard:   guard,
		Handler: h,
	}, nil
}

// Cleanup releases held connections, last-opened first.
func (d *Dependencies) Cleanup() {
	if d.Redis != nil {
		d.Redis.Cleanup()
	}
	if d.Storage != nil {
		d.Storage.Cleanup()
	}
}
