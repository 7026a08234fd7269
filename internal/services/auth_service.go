package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"github.com/UniFlow-2025/enrollment-service/internal/events"
	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
	"github.com/UniFlow-2025/enrollment-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

// ===== AUTHENTICATION =====

// dummyHash is compared against when the identifier resolves to nothing, so
// both failure paths cost one bcrypt verification.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-timing-password"), bcrypt.DefaultCost)

func (s *authService) Authenticate(ctx context.Context, req *LoginRequest) (*models.Account, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, ErrInvalidCredentials
	}

	account, err := s.repo.Account().GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Equalize the cost of unknown-user and wrong-password paths.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !account.IsActive {
		s.logger.Warn("login attempt on inactive account", "account_id", account.ID)
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// ===== REGISTRATION =====

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.Account, error) {
	if errs := s.validator.GetBusinessValidator().ValidateRegister(req); len(errs) > 0 {
		return nil, errs
	}
	return s.createAccount(ctx, req)
}

func (s *authService) CreateAccount(ctx context.Context, req *RegisterRequest) (*models.Account, error) {
	// Administrative path: same factory, but any role may be assigned.
	var errs validator.ValidationErrors
	errs = append(errs, s.validator.Validate(req)...)
	if req.Password != req.PasswordConfirm {
		errs = append(errs, validator.ValidationError{
			Field: "password_confirm", Message: "does not match the password", Rule: "password_match",
		})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return s.createAccount(ctx, req)
}

// createAccount is the single registration factory: Account, Profile and (for
// teachers) the Instructor record are created in one transaction.
func (s *authService) createAccount(ctx context.Context, req *RegisterRequest) (*models.Account, error) {
	if errs := s.checkUniqueness(ctx, req); len(errs) > 0 {
		return nil, errs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleStudent
	if req.RoleRequest.Valid() {
		role = req.RoleRequest
	}
	faculty := models.FacultyIT
	if req.Faculty.Valid() {
		faculty = req.Faculty
	}

	account := &models.Account{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
	}

	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		if err := r.Account().Create(ctx, nil, account); err != nil {
			return err
		}

		profile := &models.Profile{
			AccountID: account.ID,
			Role:      role,
			Faculty:   faculty,
			Phone:     req.Phone,
		}
		if err := r.Profile().Create(ctx, nil, profile); err != nil {
			return err
		}
		account.Profile = profile

		if role == models.RoleTeacher {
			if _, err := s.ensureInstructor(ctx, r, account, faculty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent registration may win the unique index race.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("account", "username or email")
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account registered", "account_id", account.ID, "role", role)

	if err := s.publisher.Publish(ctx, events.Event{
		Type: events.TypeAccountRegistered,
		Data: map[string]interface{}{"account_id": account.ID, "role": role},
	}); err != nil {
		s.logger.Error("failed to publish registration event", "error", err)
	}

	return account, nil
}

func (s *authService) checkUniqueness(ctx context.Context, req *RegisterRequest) validator.ValidationErrors {
	var errs validator.ValidationErrors

	taken, err := s.repo.Account().ExistsByUsername(ctx, req.Username)
	if err != nil {
		s.logger.Error("username check failed", "error", err)
	}
	if taken {
		errs = append(errs, validator.ValidationError{
			Field: "username", Message: "is already taken", Rule: "unique",
		})
	}

	taken, err = s.repo.Account().ExistsByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error("email check failed", "error", err)
	}
	if taken {
		errs = append(errs, validator.ValidationError{
			Field: "email", Message: "is already registered", Rule: "unique",
		})
	}

	return errs
}

// ===== ACCOUNT QUERIES =====

func (s *authService) GetAccount(ctx context.Context, id uint) (*AccountResponse, error) {
	account, err := s.repo.Account().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("account", id)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &AccountResponse{Account: account, Role: account.Role()}, nil
}

func (s *authService) ListAccounts(ctx context.Context, filters repositories.AccountFilters) (*AccountListResponse, error) {
	accounts, total, err := s.repo.Account().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	responses := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		responses[i] = &AccountResponse{Account: a, Role: a.Role()}
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &AccountListResponse{
		Accounts: responses,
		Total:    total,
		Page:     page,
		Size:     filters.Limit,
	}, nil
}

func (s *authService) DeleteAccount(ctx context.Context, id uint) error {
	if _, err := s.repo.Account().GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("account", id)
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	err := s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		return r.Account().Delete(ctx, nil, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.Info("account deleted", "account_id", id)
	return nil
}

// ===== PROFILE =====

func (s *authService) GetProfile(ctx context.Context, accountID uint) (*models.Profile, error) {
	profile, err := s.repo.Profile().GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("profile", accountID)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *authService) UpdateProfile(ctx context.Context, accountID uint, req *ProfileUpdateRequest) (*models.Profile, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	account, err := s.repo.Account().GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("account", accountID)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	profile, err := s.repo.Profile().GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("profile", accountID)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	accountChanged := false
	if req.FirstName != nil {
		account.FirstName = *req.FirstName
		accountChanged = true
	}
	if req.LastName != nil {
		account.LastName = *req.LastName
		accountChanged = true
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Faculty != nil {
		profile.Faculty = *req.Faculty
	}
	if req.DateOfBirth != nil {
		dob := datatypes.Date(*req.DateOfBirth)
		profile.DateOfBirth = &dob
	}
	if req.AvatarPath != nil {
		profile.AvatarPath = req.AvatarPath
	}

	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		if accountChanged {
			if err := r.Account().Update(ctx, nil, account); err != nil {
				return err
			}
		}
		return r.Profile().Update(ctx, nil, profile)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}

// ===== ROLE MANAGEMENT =====

func (s *authService) PromoteToTeacher(ctx context.Context, accountID uint) error {
	account, err := s.repo.Account().GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("account", accountID)
		}
		return fmt.Errorf("failed to get account: %w", err)
	}
	profile, err := s.repo.Profile().GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return NewNotFoundError("profile", accountID)
		}
		return fmt.Errorf("failed to get profile: %w", err)
	}

	alreadyTeacher := profile.Role == models.RoleTeacher

	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		if !alreadyTeacher {
			profile.Role = models.RoleTeacher
			if err := r.Profile().Update(ctx, nil, profile); err != nil {
				return err
			}
		}
		_, err := s.ensureInstructor(ctx, r, account, profile.Faculty)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to promote account %d: %w", accountID, err)
	}

	if !alreadyTeacher {
		s.logger.Info("account promoted to teacher", "account_id", accountID)
		if err := s.publisher.Publish(ctx, events.Event{
			Type: events.TypeTeacherPromoted,
			Data: map[string]interface{}{"account_id": accountID},
		}); err != nil {
			s.logger.Error("failed to publish promotion event", "error", err)
		}
	}

	return nil
}

// ensureInstructor get-or-creates the Instructor record for a teaching
// account, keyed by account link first and email second so that promoting the
// same account twice never yields a second row.
func (s *authService) ensureInstructor(ctx context.Context, r repositories.Repository, account *models.Account, faculty models.Faculty) (*models.Instructor, error) {
	instructor, err := r.Instructor().GetByAccountID(ctx, account.ID)
	if err == nil {
		return instructor, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up instructor: %w", err)
	}

	instructor, err = r.Instructor().GetByEmail(ctx, account.Email)
	if err == nil {
		// Pre-existing catalog record without an account: adopt it.
		if instructor.AccountID == nil {
			id := account.ID
			instructor.AccountID = &id
			if err := r.Instructor().Update(ctx, nil, instructor); err != nil {
				return nil, fmt.Errorf("failed to link instructor: %w", err)
			}
		}
		return instructor, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up instructor: %w", err)
	}

	id := account.ID
	instructor = &models.Instructor{
		FirstName:      account.FirstName,
		LastName:       account.LastName,
		Email:          account.Email,
		Specialization: models.DefaultSpecialization,
		Faculty:        faculty,
		IsActive:       true,
		AccountID:      &id,
	}
	if err := r.Instructor().Create(ctx, nil, instructor); err != nil {
		return nil, fmt.Errorf("failed to create instructor: %w", err)
	}
	return instructor, nil
}
