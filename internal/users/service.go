package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quillpress/blog-api/internal/apierr"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "Invalid credentials"

// RegisterInput is the payload accepted by registration.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput is the payload accepted by login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var registerMessages = validation.Messages{
	"Username.required": "Username is required",
	"Username.min":      "Username must be at least 3 characters long",
	"Username.max":      "Username cannot be more than 30 characters long",
	"Email.required":    "Email is required",
	"Email.email":       "Please provide a valid email",
	"Password.required": "Password is required",
	"Password.min":      "Password must be at least 6 characters long",
}

// Service encapsulates user-related business logic
type Service struct {
	repo        UserRepository
	cost        int
	localIssuer string
}

type Option func(*Service)

// WithLocalIssuer names the issuer of locally signed access tokens. Claims carrying any
// other issuer are resolved as OIDC subjects.
func WithLocalIssuer(iss string) Option {
	return func(s *Service) { s.localIssuer = iss }
}

func NewService(r UserRepository, opts ...Option) *Service {
	s := &Service{repo: r, cost: bcrypt.DefaultCost}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register validates in, hashes the password and stores a new user with the user role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if msgs := validation.Struct(in, registerMessages); len(msgs) > 0 {
		return nil, apierr.Validation(msgs...)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := models.Now()
	u := &models.User{
		ID:           primitive.NewObjectID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks email and password. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, in LoginInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apierr.Validation("Please provide an email and password")
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apierr.Unauthenticated(msgInvalidCredentials)
		}
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, apierr.Unauthenticated(msgInvalidCredentials)
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return s.repo.GetBySub(ctx, sub)
}

// AuthorRefs reduces the given users to {_id, username}; unknown ids are left out.
func (s *Service) AuthorRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.AuthorRef, error) {
	out := make(map[primitive.ObjectID]models.AuthorRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range list {
		out[u.ID] = u.Ref()
	}
	return out, nil
}

// UpsertFromClaims creates or updates a user using OIDC claims map
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("claims carry no subject")
	}
	email, _ := claims["email"].(string)
	username, _ := claims["preferred_username"].(string)
	if username == "" {
		username, _ = claims["name"].(string)
	}
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}
	if username == "" {
		username = sub
	}
	return s.repo.UpsertBySub(ctx, &models.User{Sub: sub, Email: strings.ToLower(email), Username: username})
}

// ResolveIdentity maps verified token claims to an existing account. Tokens from the local
// issuer carry the user id as subject; tokens from any other issuer are OIDC tokens whose
// account is provisioned on first use. The role always comes from the stored user.
func (s *Service) ResolveIdentity(ctx context.Context, claims map[string]interface{}) (models.Identity, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return models.Identity{}, errors.New("claims carry no subject")
	}
	iss, _ := claims["iss"].(string)
	var (
		u   *models.User
		err error
	)
	if iss == s.localIssuer {
		id, perr := primitive.ObjectIDFromHex(sub)
		if perr != nil {
			return models.Identity{}, fmt.Errorf("local subject %q: %w", sub, ErrNotFound)
		}
		u, err = s.repo.GetByID(ctx, id)
	} else {
		u, err = s.UpsertFromClaims(ctx, claims)
	}
	if err != nil {
		return models.Identity{}, err
	}
	return models.Identity{ID: u.ID, Username: u.Username, Role: u.Role}, nil
}

// PromoteByEmail grants the admin role to the user with email.
func (s *Service) PromoteByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.SetRoleByEmail(ctx, strings.ToLower(strings.TrimSpace(email)), models.RoleAdmin)
}
