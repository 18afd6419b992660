package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/user-accounts-service/internal/interface/http"
	"github.com/oksasatya/user-accounts-service/internal/interface/middleware"
)

// UserModule wires the user account routes under /users.
// Public: addUsers, getUsers, updateUsers/:id, deleteUsers/:id, authenticate, verifyToken
// Protected: search
type UserModule struct {
	Handler  *handlers.UserHandler
	Verifier middleware.TokenVerifier
}

func NewUserModule(h *handlers.UserHandler, v middleware.TokenVerifier) *UserModule {
	return &UserModule{Handler: h, Verifier: v}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.POST("/addUsers", m.Handler.Create)
	users.POST("/getUsers", m.Handler.List)
	users.PATCH("/updateUsers/:id", m.Handler.Update)
	users.DELETE("/deleteUsers/:id", m.Handler.Delete)
	users.POST("/authenticate", m.Handler.Authenticate)
	users.POST("/verifyToken", m.Handler.VerifyToken)

	users.GET("/search", middleware.Auth(m.Verifier), m.Handler.Search)
}
