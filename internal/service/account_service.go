package service

import (
	"context"
	"fmt"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/model"
	"github.com/HanjuJo/nexo-v1/internal/policy"
	"github.com/HanjuJo/nexo-v1/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AccountService manages employee accounts. Administrators manage employees;
// only super administrators manage other administrators.
type AccountService interface {
	Create(ctx context.Context, who identity.Identity, req dto.CreateAccountRequest) (*dto.AccountResponse, error)
	Me(ctx context.Context, who identity.Identity) (*dto.AccountResponse, error)
	Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.AccountResponse, error)
	List(ctx context.Context, who identity.Identity, filter dto.AccountFilter) (*dto.ListResponse[dto.AccountResponse], error)
	Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateAccountRequest) (*dto.AccountResponse, error)
	Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error
}

type accountService struct {
	repo repository.UserRepository
}

func NewAccountService(repo repository.UserRepository) AccountService {
	return &accountService{repo: repo}
}

// HashPassword returns the bcrypt hash stored for an account password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// roleFlags derives the stored admin flags from a role.
func roleFlags(role identity.Role) (isAdmin, isSuperAdmin bool) {
	switch role {
	case identity.RoleSuperAdmin:
		return true, true
	case identity.RoleAdmin:
		return true, false
	default:
		return false, false
	}
}

func administrativeRole(role identity.Role) bool {
	return role == identity.RoleAdmin || role == identity.RoleSuperAdmin
}

func (s *accountService) Create(ctx context.Context, who identity.Identity, req dto.CreateAccountRequest) (*dto.AccountResponse, error) {
	if err := requireAdmin(who, "manage accounts"); err != nil {
		return nil, err
	}
	role := identity.Role(req.Role)
	if !role.Valid() {
		return nil, apierror.Validation("unknown role", map[string]string{"role": "oneof"})
	}
	if administrativeRole(role) && !who.SuperAdmin() {
		return nil, apierror.Forbidden("only super administrators can create administrator accounts")
	}
	if err := s.checkUnique(ctx, req.Username, req.Email, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apierror.Internal("could not store password", err)
	}
	isAdmin, isSuper := roleFlags(role)
	u := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     repository.NormalizeName(req.FullName),
		Phone:        req.Phone,
		Role:         string(role),
		IsAdmin:      isAdmin,
		IsSuperAdmin: isSuper,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, apierror.From(err)
	}
	log.Info().Str("account_id", u.ID.String()).Str("role", u.Role).Str("by", who.UserID.String()).Msg("account created")
	return toAccountResponse(u), nil
}

// Me returns the caller's own account regardless of role.
func (s *accountService) Me(ctx context.Context, who identity.Identity) (*dto.AccountResponse, error) {
	u, err := s.repo.FindByID(ctx, who.UserID)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "account")
	}
	return toAccountResponse(u), nil
}

func (s *accountService) Get(ctx context.Context, who identity.Identity, id uuid.UUID) (*dto.AccountResponse, error) {
	u, err := s.visible(ctx, who, id)
	if err != nil {
		return nil, err
	}
	return toAccountResponse(u), nil
}

func (s *accountService) List(ctx context.Context, who identity.Identity, filter dto.AccountFilter) (*dto.ListResponse[dto.AccountResponse], error) {
	filter.Normalize()
	if policy.Resolve(who, policy.ResourceAccount).Visibility == policy.None {
		return &dto.ListResponse[dto.AccountResponse]{Data: []dto.AccountResponse{}, Skip: filter.Skip, Limit: filter.Limit}, nil
	}
	filter.EmployeesOnly = !who.SuperAdmin()
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.From(err)
	}
	data := make([]dto.AccountResponse, len(rows))
	for i := range rows {
		data[i] = *toAccountResponse(&rows[i])
	}
	return &dto.ListResponse[dto.AccountResponse]{Data: data, Total: total, Skip: filter.Skip, Limit: filter.Limit}, nil
}

func (s *accountService) Update(ctx context.Context, who identity.Identity, id uuid.UUID, req dto.UpdateAccountRequest) (*dto.AccountResponse, error) {
	u, err := s.visible(ctx, who, id)
	if err != nil {
		return nil, err
	}
	self := u.ID == who.UserID

	var username, email string
	if req.Username != nil {
		username = *req.Username
	}
	if req.Email != nil {
		email = *req.Email
	}
	if err := s.checkUnique(ctx, username, email, u.ID); err != nil {
		return nil, err
	}

	if req.Role != nil && *req.Role != u.Role {
		role := identity.Role(*req.Role)
		switch {
		case !role.Valid():
			return nil, apierror.Validation("unknown role", map[string]string{"role": "oneof"})
		case self:
			return nil, apierror.Forbidden("you cannot change your own role")
		case administrativeRole(role) && !who.SuperAdmin():
			return nil, apierror.Forbidden("only super administrators can grant administrator rights")
		}
		u.Role = string(role)
		u.IsAdmin, u.IsSuperAdmin = roleFlags(role)
	}
	if req.IsActive != nil && *req.IsActive != u.IsActive {
		if self {
			return nil, apierror.Forbidden("you cannot change your own activation")
		}
		u.IsActive = *req.IsActive
	}
	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.FullName != nil {
		u.FullName = repository.NormalizeName(*req.FullName)
	}
	if req.Phone != nil {
		u.Phone = req.Phone
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, apierror.Internal("could not store password", err)
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apierror.From(err)
	}
	return toAccountResponse(u), nil
}

// Delete removes an account that owns no documents.
func (s *accountService) Delete(ctx context.Context, who identity.Identity, id uuid.UUID) error {
	if id == who.UserID {
		return apierror.Forbidden("you cannot delete your own account")
	}
	if _, err := s.visible(ctx, who, id); err != nil {
		return err
	}
	owned, err := s.repo.OwnedDocuments(ctx, id)
	if err != nil {
		return apierror.From(err)
	}
	if owned > 0 {
		return apierror.Conflict(fmt.Sprintf("account still owns %d documents; reassign or deactivate it instead", owned))
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		return notFoundAs(apierror.From(err), "account")
	}
	log.Info().Str("account_id", id.String()).Str("by", who.UserID.String()).Msg("account deleted")
	return nil
}

// visible loads an account the caller may manage. Administrator accounts are
// hidden from callers that are not super administrators.
func (s *accountService) visible(ctx context.Context, who identity.Identity, id uuid.UUID) (*model.User, error) {
	if policy.Resolve(who, policy.ResourceAccount).Visibility == policy.None {
		return nil, apierror.NotFound("account not found")
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(apierror.From(err), "account")
	}
	if u.Administrative() && !who.SuperAdmin() && u.ID != who.UserID {
		return nil, apierror.NotFound("account not found")
	}
	return u, nil
}

func (s *accountService) checkUnique(ctx context.Context, username, email string, exclude uuid.UUID) error {
	fields := make(map[string]string)
	if username != "" {
		taken, err := s.repo.UsernameTaken(ctx, username, exclude)
		if err != nil {
			return apierror.From(err)
		}
		if taken {
			fields["username"] = "taken"
		}
	}
	if email != "" {
		taken, err := s.repo.EmailTaken(ctx, email, exclude)
		if err != nil {
			return apierror.From(err)
		}
		if taken {
			fields["email"] = "taken"
		}
	}
	if len(fields) > 0 {
		e := apierror.Conflict("username or email already in use")
		e.Fields = fields
		return e
	}
	return nil
}

func toAccountResponse(u *model.User) *dto.AccountResponse {
	return &dto.AccountResponse{
		ID:           u.ID.String(),
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		Phone:        u.Phone,
		Role:         u.Role,
		IsAdmin:      u.IsAdmin,
		IsSuperAdmin: u.IsSuperAdmin,
		IsActive:     u.IsActive,
		CreatedAt:    formatTime(u.CreatedAt),
	}
}
