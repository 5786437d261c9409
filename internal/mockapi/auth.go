package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/qprep-client/internal/model"
	"github.com/stemsi/qprep-client/internal/response"
	"github.com/stemsi/qprep-client/internal/validator"
)

const contextKeyUserID = "user_id"

// Claims is the token body the mock issues.
type Claims struct {
	jwt.RegisteredClaims
	Contact string `json:"contact"`
}

// IssueToken signs a token for userID.
func (s *Server) IssueToken(userID, contact string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		},
		Contact: contact,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.opts.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token issued by IssueToken.
func (s *Server) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// requireUser validates the bearer token and stores the user ID.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := s.ValidateToken(tokenStr)
		if err != nil {
			code := response.ErrTokenInvalid
			if errors.Is(err, jwt.ErrTokenExpired) {
				code = response.ErrTokenExpired
			}
			response.AbortFail(c, http.StatusUnauthorized, code)
			return
		}

		s.mu.Lock()
		_, known := s.users[claims.Subject]
		s.mu.Unlock()
		if !known {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(contextKeyUserID, claims.Subject)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}

// user returns a copy of the caller's profile.
func (s *Server) user(id string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return *u
	}
	return model.User{}
}

// POST /auth/send-otp
func (s *Server) sendOTP(c *gin.Context) {
	var req model.SendOTPRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	s.log.Info().Str("mobile_no", req.MobileNo).Msg("OTP sent")
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// POST /auth/verify-otp
// Unknown numbers are registered on first login.
func (s *Server) verifyOTP(c *gin.Context) {
	var req model.VerifyOTPRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if req.OTP != s.opts.OTP {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidOTP)
		return
	}

	s.mu.Lock()
	id, ok := s.userByContact[req.MobileNo]
	if !ok {
		id = uuid.NewString()
		s.users[id] = &model.User{ID: id, Contact: req.MobileNo, Language: model.DefaultLanguage}
		s.userByContact[req.MobileNo] = id
	}
	u := *s.users[id]
	s.mu.Unlock()

	token, err := s.IssueToken(u.ID, u.Contact)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to issue token")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, model.VerifyOTPResponse{User: u, AccessToken: token})
}

// GET /user/get-profile
func (s *Server) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, s.user(currentUserID(c)))
}

// PUT /user/profile
func (s *Server) updateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	id := currentUserID(c)
	if req.UserID != id {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	s.mu.Lock()
	u := s.users[id]
	req.Apply(u)
	out := *u
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}
