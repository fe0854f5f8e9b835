package handler

import (
	"net/http"

	"account-hub/internal/metrics"
	"account-hub/internal/service"
	"account-hub/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	Svc       *service.AccountService
	Collector *metrics.Collector
}

func NewAuthHandler(svc *service.AccountService, collector *metrics.Collector) *AuthHandler {
	return &AuthHandler{Svc: svc, Collector: collector}
}

type registerReq struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, service.KindMissingField, "invalid request body")
		return
	}

	acc, token, err := h.Svc.Register(service.RegisterInput{
		FullName:  req.FullName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Location:  req.Location,
		Role:      req.Role,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}

	if h.Collector != nil {
		h.Collector.RecordRegistration()
	}
	util.Success(c, util.Response{
		"account": acc.Profile(),
		"token":   token,
	})
}

type loginReq struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, service.KindMissingField, "invalid request body")
		return
	}

	acc, token, err := h.Svc.Login(req.Identifier, req.Password)
	if err != nil {
		if h.Collector != nil {
			if se, ok := err.(*service.Error); ok && se.Kind == service.KindInvalidCredentials {
				h.Collector.RecordAuthFailure()
			}
		}
		util.ErrorFrom(c, err)
		return
	}

	if h.Collector != nil {
		h.Collector.RecordLogin()
	}
	util.Success(c, util.Response{
		"account": acc.Profile(),
		"token":   token,
	})
}
