package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"groupchat/api/internal/apperr"
	"groupchat/api/internal/models"
	"groupchat/api/internal/service"
)

type userResponse struct {
	UserID       string    `json:"userId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobileNumber"`
	Active       bool      `json:"active"`
	AvatarURL    *string   `json:"avatarUrl,omitempty"`
	Groups       []string  `json:"groups"`
	CreatedOn    time.Time `json:"createdOn"`
}

func toUserResponse(user models.User) userResponse {
	groups := user.Groups
	if groups == nil {
		groups = []string{}
	}
	return userResponse{
		UserID:       user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		MobileNumber: user.MobileNumber,
		Active:       user.Active,
		AvatarURL:    user.AvatarURL,
		Groups:       groups,
		CreatedOn:    user.CreatedAt,
	}
}

type signUpRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName"`
	MobileNumber string `json:"mobileNumber"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
}

func (h HandlerSet) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}

	user, err := h.auth.SignUp(c.Request.Context(), service.SignUpInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Password:     req.Password,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "user created", toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AuthToken   string       `json:"authToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	UserDetails userResponse `json:"userDetails"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "login successful", loginResponse{
		AuthToken:   result.Token,
		ExpiresAt:   result.ExpiresAt,
		UserDetails: toUserResponse(result.User),
	})
}

// Logout always responds success: revoking an already-revoked, expired
// or garbage token is a no-op.
func (h HandlerSet) Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")

	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "logged out successfully", nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}

	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "mail sent successfully", nil)
}

type resetPasswordRequest struct {
	UserID     string `json:"userId"`
	ResetToken string `json:"resetToken"`
	Password   string `json:"password" binding:"required"`
}

// ResetPassword accepts either the user ID directly or the reset token
// from a mailed link.
func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}

	userID := req.UserID
	if userID == "" {
		var err error
		userID, err = h.auth.ResetTokenUser(c.Request.Context(), req.ResetToken)
		if err != nil {
			respondErr(c, err)
			return
		}
	}

	if err := h.auth.ResetPassword(c.Request.Context(), userID, req.Password); err != nil {
		respondErr(c, err)
		return
	}

	respondOK(c, "password reset successful", nil)
}

func (h HandlerSet) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondErr(c, apperr.Wrap(apperr.KindStoreUnavailable, "failed to list users", err))
		return
	}
	if len(users) == 0 {
		respondErr(c, apperr.E(apperr.KindNotFound, "no user found"))
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, toUserResponse(user))
	}
	respondOK(c, "all user details found", resp)
}

func (h HandlerSet) UserDetails(c *gin.Context) {
	userID := c.Param("userId")

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondErr(c, apperr.Wrap(apperr.KindNotFound, "no user found", err))
		return
	}

	if groups, err := h.users.ListGroups(c.Request.Context(), userID); err == nil {
		user.Groups = groups
	}

	respondOK(c, "user details found", toUserResponse(user))
}

type editUserRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	MobileNumber string `json:"mobileNumber"`
}

func (h HandlerSet) EditUser(c *gin.Context) {
	userID := c.Param("userId")

	var req editUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindErr(c, err)
		return
	}

	if err := h.users.UpdateProfile(c.Request.Context(), userID, req.FirstName, req.LastName, req.MobileNumber); err != nil {
		respondErr(c, apperr.Wrap(apperr.KindNotFound, "no user found", err))
		return
	}

	respondOK(c, "user details edited", nil)
}

// DeleteUser deactivates the account. The row survives so room member
// lists keep a valid reference.
func (h HandlerSet) DeleteUser(c *gin.Context) {
	userID := c.Param("userId")

	if err := h.users.SetActive(c.Request.Context(), userID, false); err != nil {
		respondErr(c, apperr.Wrap(apperr.KindNotFound, "no user found", err))
		return
	}

	respondOK(c, "deleted the user successfully", nil)
}

func (h HandlerSet) UploadAvatar(c *gin.Context) {
	userID := c.Param("userId")

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		respondErr(c, apperr.Wrap(apperr.KindValidation, "avatar file is missing", err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondErr(c, apperr.Wrap(apperr.KindValidation, "avatar file is unreadable", err))
		return
	}
	defer file.Close()

	url, err := h.store.PutAvatar(
		c.Request.Context(),
		userID,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		respondErr(c, apperr.Wrap(apperr.KindStoreUnavailable, "avatar upload failed", err))
		return
	}

	if err := h.users.SetAvatarURL(c.Request.Context(), userID, url); err != nil {
		respondErr(c, apperr.Wrap(apperr.KindNotFound, "no user found", err))
		return
	}

	respondOK(c, "avatar uploaded", gin.H{"avatarUrl": url})
}
