package httpapi

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/plantaofacil/accounts/internal/common"
	"github.com/plantaofacil/accounts/internal/server/models"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const forgotPasswordMessage = "Se a conta existir e estiver aprovada, enviaremos um email para redefinir a senha."

type registerRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisicao invalido.")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Senha == "" {
		writeError(w, http.StatusBadRequest, "Email e senha sao obrigatorios.")
		return
	}
	if !emailRegex.MatchString(email) {
		writeError(w, http.StatusBadRequest, "Email invalido.")
		return
	}
	if len(req.Senha) < 6 {
		writeError(w, http.StatusBadRequest, "A senha deve ter pelo menos 6 caracteres.")
		return
	}

	if _, err := a.accounts.Register(r.Context(), email, req.Senha); err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "Este email ja esta cadastrado.")
			return
		}
		a.logger.Error(r.Context(), "register failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Erro interno ao criar conta.")
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		Success: true,
		Message: "Cadastro recebido e pendente de aprovacao.",
	})
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

type loginUser struct {
	ID    string          `json:"id"`
	Email string          `json:"email"`
	Nome  string          `json:"nome"`
	Role  models.UserRole `json:"role"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisicao invalido.")
		return
	}
	if req.Email == "" || req.Senha == "" {
		writeError(w, http.StatusBadRequest, "Email e senha sao obrigatorios.")
		return
	}

	result, err := a.accounts.Login(r.Context(), req.Email, req.Senha)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Email ou senha invalidos.")
		case errors.Is(err, common.ErrAccountPending):
			writeError(w, http.StatusForbidden, "Conta pendente de aprovacao.")
		case errors.Is(err, common.ErrAccountRejected):
			writeError(w, http.StatusForbidden, "Conta rejeitada.")
		default:
			a.logger.Error(r.Context(), "login failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "Erro interno ao autenticar.")
		}
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: result.Token,
		User: loginUser{
			ID:    result.User.ID,
			Email: result.User.Email,
			Nome:  result.User.Nome,
			Role:  result.User.Role,
		},
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// handleForgotPassword answers identically for every outcome so the
// endpoint cannot be used to probe which emails have accounts.
func (a *API) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	generic := messageResponse{Success: true, Message: forgotPasswordMessage}

	var req forgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusOK, generic)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		writeJSON(w, http.StatusOK, generic)
		return
	}

	a.resets.RequestReset(r.Context(), email)
	writeJSON(w, http.StatusOK, generic)
}

type resetPasswordRequest struct {
	Token     string `json:"token"`
	NovaSenha string `json:"novaSenha"`
}

func (a *API) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisicao invalido.")
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" || req.NovaSenha == "" {
		writeError(w, http.StatusBadRequest, "Token e nova senha sao obrigatorios.")
		return
	}
	if len(req.NovaSenha) < 6 {
		writeError(w, http.StatusBadRequest, "A nova senha deve ter pelo menos 6 caracteres.")
		return
	}

	if err := a.resets.ResetPassword(r.Context(), token, req.NovaSenha); err != nil {
		if errors.Is(err, common.ErrTokenInvalid) {
			writeError(w, http.StatusBadRequest, "Token invalido, expirado ou ja utilizado.")
			return
		}
		a.logger.Error(r.Context(), "reset-password failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Erro interno ao redefinir senha.")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Senha redefinida com sucesso."})
}

type pendingUsersResponse struct {
	Users []models.PendingUserSummary `json:"users"`
	Total int                         `json:"total"`
}

func (a *API) handleListPendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.accounts.ListPendingUsers(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), "listing pending users failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Erro interno ao buscar usuarios pendentes.")
		return
	}
	writeJSON(w, http.StatusOK, pendingUsersResponse{Users: users, Total: len(users)})
}

type decisionResponse struct {
	Success bool                      `json:"success"`
	User    models.PendingUserSummary `json:"user"`
	Message string                    `json:"message"`
}

func (a *API) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.accounts.Approve(r.Context(), chi.URLParam(r, "id"), sessionUserID(r.Context()))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Usuario nao encontrado.")
			return
		}
		a.logger.Error(r.Context(), "approving user failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Erro interno ao aprovar usuario.")
		return
	}
	writeJSON(w, http.StatusOK, decisionResponse{
		Success: true,
		User:    user.Summary(),
		Message: "Conta aprovada com sucesso.",
	})
}

func (a *API) handleRejectUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.accounts.Reject(r.Context(), chi.URLParam(r, "id"), sessionUserID(r.Context()))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Usuario nao encontrado.")
			return
		}
		a.logger.Error(r.Context(), "rejecting user failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "Erro interno ao rejeitar usuario.")
		return
	}
	writeJSON(w, http.StatusOK, decisionResponse{
		Success: true,
		User:    user.Summary(),
		Message: "Conta rejeitada com sucesso.",
	})
}
