package http

import (
	"context"
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/abhi01978/NechGen/internal/auth"
)

type userPayload struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionBody struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type registerInput struct {
	Body struct {
		Name     string `json:"name" minLength:"1" doc:"Display name"`
		Email    string `json:"email" format:"email"`
		Password string `json:"password" minLength:"6"`
	}
}

type registerOutput struct {
	Status int
	Body   sessionBody
}

type loginInput struct {
	Body struct {
		Email    string `json:"email" format:"email"`
		Password string `json:"password" minLength:"1"`
	}
}

type loginOutput struct {
	Body sessionBody
}

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "auth-register",
		Method:        stdhttp.MethodPost,
		Path:          "/api/auth/register",
		Summary:       "Register a new account",
		DefaultStatus: stdhttp.StatusCreated,
	}, s.registerHandler)

	huma.Register(s.api, huma.Operation{
		OperationID: "auth-login",
		Method:      stdhttp.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "Log in with email and password",
	}, s.loginHandler)
}

func (s *Server) registerHandler(ctx context.Context, input *registerInput) (*registerOutput, error) {
	session, err := s.auth.Register(ctx, input.Body.Name, input.Body.Email, input.Body.Password)
	if err != nil {
		if eris.Is(err, auth.ErrEmailTaken) {
			return nil, huma.Error400BadRequest("Operator already exists")
		}
		s.recordError(ctx, err, "registration failed", logrus.Fields{"email": input.Body.Email})
		return nil, huma.Error500InternalServerError("Server Error during registration")
	}

	out := &registerOutput{Status: stdhttp.StatusCreated}
	out.Body = sessionToBody(session)
	return out, nil
}

func (s *Server) loginHandler(ctx context.Context, input *loginInput) (*loginOutput, error) {
	session, err := s.auth.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		if eris.Is(err, auth.ErrInvalidCredentials) {
			return nil, huma.Error401Unauthorized("Invalid Credentials")
		}
		s.recordError(ctx, err, "login failed", logrus.Fields{"email": input.Body.Email})
		return nil, huma.Error500InternalServerError("Server Error during login")
	}

	return &loginOutput{Body: sessionToBody(session)}, nil
}

func sessionToBody(session *auth.Session) sessionBody {
	return sessionBody{
		Token: session.Token,
		User: userPayload{
			ID:    session.User.UserID,
			Name:  session.User.Name,
			Email: session.User.Email,
		},
	}
}

// identify resolves the caller from the Authorization header, collapsing
// every failure into a 401. Invoked explicitly by each protected handler.
func (s *Server) identify(ctx context.Context, authorization string) (*auth.Identity, error) {
	identity, err := s.auth.Authenticate(ctx, authorization)
	if err != nil {
		if eris.Is(err, auth.ErrUnauthorized) {
			return nil, huma.Error401Unauthorized("Not authorized, token failed")
		}
		s.recordError(ctx, err, "authentication failed", nil)
		return nil, huma.Error401Unauthorized("Not authorized, token failed")
	}
	return identity, nil
}
