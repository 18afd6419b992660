package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/user-accounts-service/internal/application"
	"github.com/oksasatya/user-accounts-service/internal/domain/entity"
	"github.com/oksasatya/user-accounts-service/internal/interface/middleware"
	"github.com/oksasatya/user-accounts-service/pkg/helpers"
	"github.com/oksasatya/user-accounts-service/pkg/response"
	"github.com/oksasatya/user-accounts-service/pkg/validation"
)

const (
	MsgCreated       = "User successfully created"
	MsgUpdated       = "User successfully updated"
	MsgDeleted       = "User successfully deleted"
	MsgAuthenticated = "Authentication successful"
	MsgBadCredential = "Incorrect username or password. Please try again."
	MsgInvalidToken  = "Invalid token"
	MsgInvalidInput  = "invalid payload"
	MsgInvalidID     = "invalid user id"
)

type UserHandler struct {
	Svc     *userapp.Service
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

// Passwords are capped at 150 characters here and at
// userapp.MaxPasswordBytes in the service; the stored form must fit varchar(256).
type createUserRequest struct {
	Username string `json:"username" binding:"required,max=70"`
	Password string `json:"password" binding:"required,max=150,strongpwd"`
	Branch   string `json:"branch" binding:"max=50"`
	Role     string `json:"role" binding:"max=70"`
	Status   string `json:"status" binding:"omitempty,userstatus"`
}

type updateUserRequest struct {
	Username string `json:"username" binding:"required,max=70"`
	Password string `json:"password" binding:"omitempty,max=150,strongpwd"`
	Branch   string `json:"branch" binding:"max=50"`
	Role     string `json:"role" binding:"max=70"`
	Status   string `json:"status" binding:"omitempty,userstatus"`
}

type authenticateRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Create POST /users/addUsers
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, MsgInvalidInput, validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), userapp.UserInput{
		Username: req.Username,
		Password: req.Password,
		Branch:   req.Branch,
		Role:     req.Role,
		Status:   entity.UserStatus(req.Status),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, MsgCreated, response.Fields{"user": u})
}

// List POST /users/getUsers
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", response.Fields{"users": users})
}

// Update PATCH /users/updateUsers/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, MsgInvalidInput, validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), id, userapp.UserInput{
		Username: req.Username,
		Password: req.Password,
		Branch:   req.Branch,
		Role:     req.Role,
		Status:   entity.UserStatus(req.Status),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, MsgUpdated, response.Fields{"user": u})
}

// Delete DELETE /users/deleteUsers/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Svc.Remove(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, MsgDeleted, nil)
}

// Authenticate POST /users/authenticate
func (h *UserHandler) Authenticate(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnauthorized, MsgBadCredential, nil)
		return
	}
	res, err := h.Svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, MsgBadCredential, nil)
		return
	}
	h.Cookies.SetToken(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusOK, MsgAuthenticated, response.Fields{
		"token":       res.Token,
		"userDetails": res.Claims,
	})
}

// VerifyToken POST /users/verifyToken
func (h *UserHandler) VerifyToken(c *gin.Context) {
	claims, err := h.Svc.VerifyToken(c.Request.Context(), middleware.TokenFromRequest(c))
	if err != nil {
		if _, cerr := c.Cookie(helpers.TokenCookieName); cerr == nil {
			h.Cookies.Clear(c)
		}
		response.Error(c, http.StatusUnauthorized, MsgInvalidToken, nil)
		return
	}
	response.Success(c, http.StatusOK, "", response.Fields{"userDetails": claims})
}

// Search GET /users/search?q=&size=, behind middleware.Auth
func (h *UserHandler) Search(c *gin.Context) {
	caller, ok := middleware.ClaimsFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, MsgInvalidToken, nil)
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	if h.Logger != nil {
		h.Logger.WithFields(logrus.Fields{"user_id": caller.UserID, "q": c.Query("q")}).Debug("user search")
	}
	users, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", response.Fields{"users": users})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, MsgInvalidID, nil)
		return 0, false
	}
	return id, true
}

// fail maps service error kinds onto HTTP statuses. Causes stay in the log.
func (h *UserHandler) fail(c *gin.Context, err error) {
	switch userapp.KindOf(err) {
	case userapp.KindAuthentication:
		response.Error(c, http.StatusUnauthorized, MsgBadCredential, nil)
	case userapp.KindValidation, userapp.KindNotFound:
		response.Error(c, http.StatusBadRequest, userapp.PublicMessage(err), nil)
	default:
		if h.Logger != nil {
			helpers.LogError(h.Logger, "unclassified service error", err, logrus.Fields{"path": c.FullPath()})
		}
		response.Error(c, http.StatusBadRequest, "request failed", nil)
	}
}
