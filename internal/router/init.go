package router

import (
	appuser "github.com/oksasatya/user-accounts-service/internal/application"
	"github.com/oksasatya/user-accounts-service/internal/container"
	repouser "github.com/oksasatya/user-accounts-service/internal/domain/repository"
	"github.com/oksasatya/user-accounts-service/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/user-accounts-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-accounts-service/internal/infrastructure/redisstore"
	"github.com/oksasatya/user-accounts-service/internal/infrastructure/search"
	handlers "github.com/oksasatya/user-accounts-service/internal/interface/http"
	"github.com/oksasatya/user-accounts-service/internal/router/modules"
)

type UserModuleDeps struct {
	Service *appuser.Service
	Handler *handlers.UserHandler
}

func buildUserRepo() repouser.UserRepository {
	if db := container.GetDB(); db != nil {
		return pginfra.NewUserRepository(db)
	}
	container.GetLogger().Warn("no database configured, users are kept in memory")
	return memory.NewUserRepository()
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	repo := buildUserRepo()

	opts := []appuser.Option{
		appuser.WithPasswordPolicy(cfg.PasswordPolicyEnabled),
		appuser.WithMetrics(container.GetMetrics()),
	}
	if rdb := container.GetRedis(); rdb != nil {
		opts = append(opts, appuser.WithSessions(redisstore.NewSessionStore(rdb)))
	}
	if es := container.GetES(); es != nil {
		opts = append(opts, appuser.WithDirectory(search.NewUserDirectory(es, cfg.ESUsersIndex)))
	}

	service := appuser.NewService(
		repo,
		container.GetCipher(),
		container.GetJWT(),
		container.GetLogger(),
		opts...,
	)

	handler := handlers.NewUserHandler(
		service,
		container.GetLogger(),
		cfg.CookieDomain,
		cfg.CookieSecure,
	)

	return UserModuleDeps{
		Service: service,
		Handler: handler,
	}
}

// InitModules builds every feature module from the container and adds it to r.
// Call once during startup, after the container is populated.
func InitModules(r *Registry) {
	userDeps := buildUserDeps()
	r.Add(modules.NewUserModule(userDeps.Handler, userDeps.Service))
	if m := container.GetMetrics(); m != nil && container.GetConfig().MetricsEnabled {
		r.Add(modules.NewMetricsModule(m))
	}
}
