package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/dmarques/users-api/internal/domain/entity"
	repo "github.com/dmarques/users-api/internal/domain/repository"
	"github.com/dmarques/users-api/pkg/helpers"
	"github.com/dmarques/users-api/pkg/mailer"
)

// ErrEmailTaken signals the email-uniqueness business rule. It is distinct
// from entity validation errors and from "not found" (a nil result).
var ErrEmailTaken = errors.New("email already registered")

// UserDTO is the user projection returned by the API. It never carries the
// password hash.
type UserDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUserDTO(u *entity.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserService orchestrates user CRUD: uniqueness checks, password hashing,
// persistence, plus best-effort side channels (welcome emails, search
// indexing). Side channels never fail a request.
type UserService struct {
	Repo         repo.UserRepository
	Logger       *logrus.Logger
	Pub          *helpers.RabbitPublisher
	ES           *elasticsearch.Client
	ESUsersIndex string
	MailEnabled  bool
}

func NewUserService(r repo.UserRepository, logger *logrus.Logger, pub *helpers.RabbitPublisher, es *elasticsearch.Client, esUsersIndex string, mailEnabled bool) *UserService {
	return &UserService{
		Repo:         r,
		Logger:       logger,
		Pub:          pub,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		MailEnabled:  mailEnabled,
	}
}

// GetByID returns (nil, nil) when no user has the id.
func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *UserService) GetAll(ctx context.Context) ([]*entity.User, error) {
	return s.Repo.GetAll(ctx)
}

// Create is the only path that turns a plaintext password into a hash.
// Validation failures and duplicate emails are rejected before any durable
// write; the store's uniqueness constraint backstops the pre-check under
// concurrent creates.
func (s *UserService) Create(ctx context.Context, name, email, password string) (*entity.User, error) {
	if strings.TrimSpace(password) == "" {
		return nil, entity.ErrEmptyPassword
	}
	email = entity.NormalizeEmail(email)
	if email == "" {
		return nil, entity.ErrEmptyEmail
	}

	exists, err := s.Repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := entity.NewUser(name, email, hash)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.enqueueEmail(ctx, mailer.WelcomeJob(u.Email, u.Name))
	s.indexUser(ctx, u)
	return u, nil
}

// Update mutates name/email. Returns (nil, nil) when the id is unknown and
// ErrEmailTaken when another user already owns the target email.
func (s *UserService) Update(ctx context.Context, id, name, email string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}

	owner, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if owner != nil && owner.ID != id {
		return nil, ErrEmailTaken
	}

	if err := u.UpdateProfile(name, email); err != nil {
		return nil, err
	}
	ok, err := s.Repo.Update(ctx, u)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if !ok {
		// deleted between fetch and write
		return nil, nil
	}

	s.indexUser(ctx, u)
	return u, nil
}

// ChangePassword re-hashes and persists a new password. Returns (nil, nil)
// when the id is unknown.
func (s *UserService) ChangePassword(ctx context.Context, id, newPassword string) (*entity.User, error) {
	if strings.TrimSpace(newPassword) == "" {
		return nil, entity.ErrEmptyPassword
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := u.ChangePassword(hash); err != nil {
		return nil, err
	}
	ok, err := s.Repo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	s.enqueueEmail(ctx, mailer.PasswordChangedJob(u.Email, u.Name))
	return u, nil
}

// Remove deletes the user. Returns false when the id is unknown; no store
// write happens in that case.
func (s *UserService) Remove(ctx context.Context, id string) (bool, error) {
	ok, err := s.Repo.Delete(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	s.removeIndex(ctx, id)
	return true, nil
}

func (s *UserService) enqueueEmail(ctx context.Context, job mailer.EmailJob) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("to", job.To).Warn("email enqueue failed")
	}
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

func (s *UserService) removeIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match query on name and email.
func (s *UserService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
