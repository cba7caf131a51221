package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dmarques/users-api/internal/application"
	handlers "github.com/dmarques/users-api/internal/interface/http"
	"github.com/dmarques/users-api/internal/router/modules"
	"github.com/dmarques/users-api/pkg/helpers"
)

// Deps is the explicit dependency set the router needs. The object graph is
// built once in main and handed in; there is no ambient registry.
type Deps struct {
	Users  *application.UserService
	Auth   *application.AuthService
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

// InitModules wires all feature modules into the registry.
func InitModules(r *Registry, deps Deps) {
	userHandler := handlers.NewUserHandler(deps.Users, deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Logger)

	r.Add(
		modules.NewAuthModule(authHandler, deps.Redis),
		modules.NewUserModule(userHandler, deps.JWT, deps.Redis),
	)
}
