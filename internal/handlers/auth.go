package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"remit/internal/auth"
	"remit/internal/middleware"
	"remit/internal/models"
	"remit/internal/services"
	"remit/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type registerRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Country     string `json:"country"`
	Password    string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateFullName(req.FullName); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePhone(req.PhoneNumber); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateCountry(req.Country); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to secure password")
		return
	}
	userID := uuid.NewString()
	accountID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.users.Create(r.Context(), tx, models.User{
			ID:           userID,
			FullName:     req.FullName,
			Email:        req.Email,
			PhoneNumber:  req.PhoneNumber,
			Country:      req.Country,
			PasswordHash: passwordHash,
		}); err != nil {
			return err
		}
		if err := h.accounts.Create(r.Context(), tx, accountID, userID, req.Country); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"user_id":    userID,
			"ip":         r.RemoteAddr,
			"user_agent": r.UserAgent(),
		})
		return h.audit.Log(r.Context(), tx, userID, "register", "user", userID, string(data))
	})
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	// Seed the welcome balance through the engine so the ledger accounts for
	// every unit the account ever held.
	if welcome, err := decimal.NewFromString(h.cfg.WelcomeBalance); err == nil && welcome.IsPositive() {
		if _, err := h.engine.Deposit(r.Context(), services.DepositRequest{
			AccountID: accountID,
			Amount:    welcome,
			Currency:  "USD",
		}); err != nil {
			h.logger.Error("welcome deposit failed", "account_id", accountID, "error", err)
		}
	}

	token, err := auth.GenerateToken(h.cfg.JWTSecret, userID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondSuccess(w, http.StatusCreated, "account created", map[string]any{
		"token":      token,
		"account_id": accountID,
		"user": map[string]any{
			"id":        userID,
			"full_name": req.FullName,
			"email":     req.Email,
			"country":   req.Country,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		data, _ := json.Marshal(map[string]string{
			"user_id":    user.ID,
			"ip":         r.RemoteAddr,
			"user_agent": r.UserAgent(),
		})
		return h.audit.Log(r.Context(), tx, user.ID, "login", "user", user.ID, string(data))
	}); err != nil {
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondSuccess(w, http.StatusOK, "logged in", map[string]any{
		"token": token,
	})
}

type updateProfileRequest struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateFullName(req.FullName); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidatePhone(req.PhoneNumber); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.users.UpdateProfile(r.Context(), tx, userID, req.FullName, req.PhoneNumber); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"full_name":    req.FullName,
			"phone_number": req.PhoneNumber,
		})
		return h.audit.Log(r.Context(), tx, userID, "update_profile", "user", userID, string(data))
	})
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "profile update failed")
		return
	}
	respondSuccess(w, http.StatusOK, "profile updated", map[string]any{
		"user": map[string]any{
			"id":           userID,
			"full_name":    req.FullName,
			"phone_number": req.PhoneNumber,
		},
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	account, err := h.accounts.GetByUserID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load account")
		return
	}
	respondSuccess(w, http.StatusOK, "ok", map[string]any{
		"user": map[string]any{
			"id":           user.ID,
			"full_name":    user.FullName,
			"email":        user.Email,
			"phone_number": user.PhoneNumber,
			"country":      user.Country,
			"created_at":   user.CreatedAt,
		},
		"account": map[string]any{
			"id":             account.ID,
			"country":        account.Country,
			"total_sent":     account.TotalSent,
			"total_received": account.TotalReceived,
		},
	})
}
