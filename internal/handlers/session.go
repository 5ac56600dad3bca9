package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auctionrelay/internal/database"
	"auctionrelay/internal/relay"
	"auctionrelay/internal/validation"
)

type SessionHandler struct {
	sessions *relay.Registry
}

func NewSessionHandler(sessions *relay.Registry) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type CredentialRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	APIID       string `json:"apiId"`
	APIHash     string `json:"apiHash"`
}

type ChallengeRequest struct {
	Code string `json:"code" binding:"required"`
}

type RestoreRequest struct {
	Session string `json:"session"`
}

func (h *SessionHandler) session(c *gin.Context) (*relay.Session, bool) {
	s, err := h.sessions.Get(c.Param("backend"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": err.Error()})
		return nil, false
	}
	return s, true
}

func sessionError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, relay.ErrInvalidTransition), errors.Is(err, relay.ErrSessionNotReady):
		status = http.StatusConflict
	case errors.Is(err, database.ErrSessionNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"status": "error", "message": err.Error()})
}

// Init godoc
// @Summary Start a messaging login
// @Tags sessions
// @Produce json
// @Security AdminKey
// @Param backend path string true "whatsapp or telegram"
// @Success 200 {object} relay.Status
// @Failure 409 {object} map[string]string "session already ready"
// @Router /sessions/{backend}/init [post]
func (h *SessionHandler) Init(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Begin(c.Request.Context()); err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Status())
}

// Credential godoc
// @Summary Submit the account to log in as
// @Description The bridge sends a login code to the account and returns a reference to it.
// @Tags sessions
// @Accept json
// @Produce json
// @Security AdminKey
// @Param backend path string true "whatsapp or telegram"
// @Param request body CredentialRequest true "Phone number and API credentials"
// @Success 200 {object} map[string]interface{} "status and challengeRef"
// @Failure 400 {object} map[string]string "invalid request"
// @Failure 409 {object} map[string]string "login not started"
// @Failure 502 {object} map[string]string "bridge error"
// @Router /sessions/{backend}/credential [post]
func (h *SessionHandler) Credential(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req CredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "phone number is required"})
		return
	}
	if err := validation.ValidatePhoneNumber(req.PhoneNumber); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	ref, err := s.SubmitCredential(c.Request.Context(), relay.Credential{
		Phone:   req.PhoneNumber,
		APIID:   req.APIID,
		APIHash: req.APIHash,
	})
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"state":        s.State(),
		"challengeRef": ref,
	})
}

// Challenge godoc
// @Summary Complete a login with the received code
// @Tags sessions
// @Accept json
// @Produce json
// @Security AdminKey
// @Param backend path string true "whatsapp or telegram"
// @Param request body ChallengeRequest true "Login code"
// @Success 200 {object} relay.Status
// @Failure 400 {object} map[string]string "invalid code"
// @Failure 409 {object} map[string]string "no code requested"
// @Failure 502 {object} map[string]string "bridge error"
// @Router /sessions/{backend}/challenge [post]
func (h *SessionHandler) Challenge(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "code is required"})
		return
	}
	if err := validation.ValidateLoginCode(req.Code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if err := s.SubmitChallenge(c.Request.Context(), req.Code); err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Status())
}

// Restore godoc
// @Summary Restore a session from a saved token
// @Description Uses the token in the body, or the one saved for the backend when the body is empty.
// @Tags sessions
// @Accept json
// @Produce json
// @Security AdminKey
// @Param backend path string true "whatsapp or telegram"
// @Param request body RestoreRequest false "Session token"
// @Success 200 {object} relay.Status
// @Failure 404 {object} map[string]string "no saved session"
// @Failure 409 {object} map[string]string "session already ready"
// @Failure 502 {object} map[string]string "bridge error"
// @Router /sessions/{backend}/restore [post]
func (h *SessionHandler) Restore(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req RestoreRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request body"})
			return
		}
	}
	if err := s.Restore(c.Request.Context(), req.Session); err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Status())
}

// Logout godoc
// @Summary Log a messaging session out
// @Tags sessions
// @Produce json
// @Security AdminKey
// @Param backend path string true "whatsapp or telegram"
// @Success 200 {object} relay.Status
// @Failure 409 {object} map[string]string "session not initialized"
// @Router /sessions/{backend}/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Logout(c.Request.Context()); err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Status())
}

// Status godoc
// @Summary Show the state of a messaging session
// @Tags sessions
// @Produce json
// @Security AdminKey
// @Param backend path string true "whatsapp or telegram"
// @Success 200 {object} relay.Status
// @Failure 404 {object} map[string]string "unknown backend"
// @Router /sessions/{backend}/status [get]
func (h *SessionHandler) Status(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Status())
}
