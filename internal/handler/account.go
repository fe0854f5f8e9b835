package handler

import (
	"net/http"

	"account-hub/internal/middleware"
	"account-hub/internal/service"
	"account-hub/internal/util"

	"github.com/gin-gonic/gin"
)

// ListPublic returns the unauthenticated account directory: id, name and
// email for every account, nothing else.
func ListPublic(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries, err := svc.ListPublic()
		if err != nil {
			util.ErrorFrom(c, err)
			return
		}
		util.Success(c, util.Response{
			"accounts": summaries,
		})
	}
}

// GetMe returns the authenticated account's own profile.
func GetMe(c *gin.Context) {
	acc, ok := middleware.CurrentAccount(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, service.KindUnauthorized, "authentication required")
		return
	}
	util.Success(c, util.Response{
		"account": acc.Profile(),
	})
}

type updateProfileReq struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl"`
}

// UpdateProfile edits the authenticated account. Password is untouched here.
func UpdateProfile(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, ok := middleware.CurrentAccount(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, service.KindUnauthorized, "authentication required")
			return
		}

		var req updateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, service.KindMissingField, "invalid request body")
			return
		}

		updated, err := svc.UpdateProfile(acc, service.ProfileEdits{
			FullName:  req.FullName,
			Email:     req.Email,
			Phone:     req.Phone,
			Location:  req.Location,
			Role:      req.Role,
			AvatarURL: req.AvatarURL,
		})
		if err != nil {
			util.ErrorFrom(c, err)
			return
		}

		util.Success(c, util.Response{
			"account": updated.Profile(),
		})
	}
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword verifies the old password and stores a new hash.
func ChangePassword(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, ok := middleware.CurrentAccount(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, service.KindUnauthorized, "authentication required")
			return
		}

		var req changePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, service.KindMissingField, "invalid request body")
			return
		}

		if err := svc.ChangePassword(acc, req.OldPassword, req.NewPassword); err != nil {
			util.ErrorFrom(c, err)
			return
		}

		util.Success(c, util.Response{
			"message": "password updated",
		})
	}
}
