package api

import (
	"net/http"
	"strings"
)

type userResponse struct {
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Phone) == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}

	devCode, err := s.auth.SendOTP(r.Context(), strings.TrimSpace(body.Phone))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := map[string]string{"message": "code sent"}
	if devCode != "" {
		resp["code"] = devCode
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
		Name  string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, user, err := s.auth.VerifyOTP(r.Context(), strings.TrimSpace(body.Phone), strings.TrimSpace(body.Code), body.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  userResponse{Phone: user.Phone, Email: user.Email, Name: user.Name, Role: user.Role},
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, user, err := s.auth.Register(r.Context(), body.Name, strings.TrimSpace(body.Email), body.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  userResponse{Phone: user.Phone, Email: user.Email, Name: user.Name, Role: user.Role},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, user, err := s.auth.Login(r.Context(), strings.TrimSpace(body.Email), body.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  userResponse{Phone: user.Phone, Email: user.Email, Name: user.Name, Role: user.Role},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	user, err := s.auth.GetUser(r.Context(), caller.Phone)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Phone: user.Phone, Email: user.Email, Name: user.Name, Role: user.Role})
}
