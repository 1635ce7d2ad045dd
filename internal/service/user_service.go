package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/HappyHacker143/taskflow/internal/apperror"
	"github.com/HappyHacker143/taskflow/internal/models"
)

type UserService struct {
	db      *gorm.DB
	options Options
}

func NewUserService(db *gorm.DB, options Options) *UserService {
	return &UserService{db: db, options: options.withDefaults()}
}

func (s *UserService) ListUsers(ctx context.Context, filter UserFilter) (UserList, error) {
	query := s.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("LEFT JOIN user_profiles ON user_profiles.user_id = users.id").
		Preload("Profile.Department")

	if filter.DepartmentID != nil {
		query = query.Where("user_profiles.department_id = ?", *filter.DepartmentID)
	}
	query = searchAny(query, filter.Search,
		"users.first_name", "users.last_name", "users.username", "users.email", "user_profiles.position")

	var users []models.User
	if err := query.Order("users.first_name ASC, users.last_name ASC, users.id ASC").Find(&users).Error; err != nil {
		return UserList{}, fmt.Errorf("list users: %w", err)
	}

	departments, err := loadDepartmentRefs(ctx, s.db)
	if err != nil {
		return UserList{}, err
	}

	result := make([]UserDTO, 0, len(users))
	for _, user := range users {
		result = append(result, userToDTO(user))
	}

	return UserList{
		Users:       result,
		Departments: departments,
		Filter: UserFilterDTO{
			DepartmentID: filter.DepartmentID,
			Search:       strings.TrimSpace(filter.Search),
		},
	}, nil
}

func (s *UserService) NewUserForm(ctx context.Context) (UserForm, error) {
	departments, err := loadDepartmentRefs(ctx, s.db)
	if err != nil {
		return UserForm{}, err
	}

	return UserForm{
		Initial: UserFormValues{
			IsActive: true,
			Role:     models.RoleEmployee,
		},
		Departments: departments,
		Roles:       roleChoices(),
	}, nil
}

// GetUserForm seeds the edit form from the stored account and profile so that
// fields the admin does not touch keep their values.
func (s *UserService) GetUserForm(ctx context.Context, userID uint) (UserForm, error) {
	user, err := loadUser(ctx, s.db, userID)
	if err != nil {
		return UserForm{}, err
	}

	departments, err := loadDepartmentRefs(ctx, s.db)
	if err != nil {
		return UserForm{}, err
	}

	dto := userToDTO(user)
	return UserForm{
		User: &dto,
		Initial: UserFormValues{
			Username:     user.Username,
			FirstName:    user.FirstName,
			LastName:     user.LastName,
			Email:        user.Email,
			IsActive:     user.IsActive,
			DepartmentID: user.Profile.DepartmentID,
			Position:     user.Profile.Position,
			Role:         user.Profile.Role,
			Phone:        user.Profile.Phone,
		},
		Departments: departments,
		Roles:       roleChoices(),
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (UserDTO, error) {
	user, err := loadUser(ctx, s.db, userID)
	if err != nil {
		return UserDTO{}, err
	}
	return userToDTO(user), nil
}

func (s *UserService) FindUserByUsername(ctx context.Context, username string) (UserDTO, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile.Department").
		Where("username = ?", strings.TrimSpace(username)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserDTO{}, notFound("user")
		}
		return UserDTO{}, fmt.Errorf("load user: %w", err)
	}
	return userToDTO(user), nil
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (UserDTO, error) {
	errs := fieldErrors{}

	username, msg := normalizeRequiredString(input.Username, "username", 150)
	if msg != "" {
		errs.add("username", msg)
	}
	firstName, msg := normalizeRequiredString(input.FirstName, "first_name", 150)
	if msg != "" {
		errs.add("first_name", msg)
	}
	lastName, msg := normalizeRequiredString(input.LastName, "last_name", 150)
	if msg != "" {
		errs.add("last_name", msg)
	}
	email, msg := normalizeEmail(input.Email)
	if msg != "" {
		errs.add("email", msg)
	}

	if input.Password1 == "" {
		errs.add("password1", "password1 is required")
	}
	if input.Password2 == "" {
		errs.add("password2", "password2 is required")
	}
	if input.Password1 != "" && input.Password2 != "" && input.Password1 != input.Password2 {
		errs.add("password2", "passwords do not match")
	}

	profile, profileErrs := s.normalizeProfile(ctx, input.DepartmentID, input.Position, input.Role, input.Phone)
	for field, message := range profileErrs {
		errs.add(field, message)
	}

	if username != "" {
		taken, err := s.usernameExists(ctx, username)
		if err != nil {
			return UserDTO{}, err
		}
		if taken {
			errs.add("username", "a user with that username already exists")
		}
	}
	if email != "" {
		taken, err := s.emailExists(ctx, email, nil)
		if err != nil {
			return UserDTO{}, err
		}
		if taken {
			errs.add("email", "a user with this email already exists")
		}
	}

	if err := errs.err(); err != nil {
		return UserDTO{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password1), s.options.PasswordCost)
	if err != nil {
		return UserDTO{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		IsActive:     true,
		IsSuperuser:  input.IsSuperuser,
		DateJoined:   s.options.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createAccount(tx, &user, profile)
	})
	if err != nil {
		return UserDTO{}, mapDatabaseError(err)
	}

	return s.GetUser(ctx, user.ID)
}

// createAccount inserts the account together with its profile. Every account
// is created through here, so a user never exists without a profile.
func createAccount(tx *gorm.DB, user *models.User, profile models.UserProfile) error {
	if err := tx.Omit("Profile").Create(user).Error; err != nil {
		return err
	}

	profile.UserID = user.ID
	if profile.AvatarColor == "" {
		profile.AvatarColor = models.DefaultAvatarColor
	}
	if profile.Role == "" {
		profile.Role = models.RoleEmployee
	}
	if err := tx.Omit("Department").Create(&profile).Error; err != nil {
		return err
	}

	user.Profile = profile
	return nil
}

const selfDeactivationMessage = "you cannot deactivate your own account"

func (s *UserService) UpdateUser(ctx context.Context, actor models.User, userID uint, input UpdateUserInput) (UserDTO, error) {
	user, err := loadUser(ctx, s.db, userID)
	if err != nil {
		return UserDTO{}, err
	}
	if input.IsActive != nil && !*input.IsActive && user.ID == actor.ID {
		return UserDTO{}, apperror.New(apperror.CodeValidation, selfDeactivationMessage)
	}

	errs := fieldErrors{}
	userUpdates := map[string]interface{}{}
	profileUpdates := map[string]interface{}{}

	if input.FirstName != nil {
		value, msg := normalizeRequiredString(*input.FirstName, "first_name", 150)
		if msg != "" {
			errs.add("first_name", msg)
		}
		userUpdates["first_name"] = value
	}
	if input.LastName != nil {
		value, msg := normalizeRequiredString(*input.LastName, "last_name", 150)
		if msg != "" {
			errs.add("last_name", msg)
		}
		userUpdates["last_name"] = value
	}
	if input.Email != nil {
		email, msg := normalizeEmail(*input.Email)
		if msg != "" {
			errs.add("email", msg)
		} else if email != "" {
			taken, err := s.emailExists(ctx, email, &user.ID)
			if err != nil {
				return UserDTO{}, err
			}
			if taken {
				errs.add("email", "a user with this email already exists")
			}
		}
		userUpdates["email"] = email
	}
	if input.IsActive != nil {
		userUpdates["is_active"] = *input.IsActive
	}

	departmentID := user.Profile.DepartmentID
	if input.DepartmentSet {
		departmentID = input.DepartmentID
	}
	position := user.Profile.Position
	if input.Position != nil {
		position = *input.Position
	}
	role := string(user.Profile.Role)
	if input.Role != nil {
		role = *input.Role
	}
	phone := user.Profile.Phone
	if input.Phone != nil {
		phone = *input.Phone
	}

	var checkDepartment *uint
	if input.DepartmentSet {
		checkDepartment = departmentID
	}
	profile, profileErrs := s.normalizeProfile(ctx, checkDepartment, position, role, phone)
	for field, message := range profileErrs {
		errs.add(field, message)
	}

	if err := errs.err(); err != nil {
		return UserDTO{}, err
	}

	if input.DepartmentSet && !equalUintPtr(user.Profile.DepartmentID, departmentID) {
		profileUpdates["department_id"] = departmentID
	}
	if profile.Position != user.Profile.Position {
		profileUpdates["position"] = profile.Position
	}
	if profile.Role != user.Profile.Role {
		profileUpdates["role"] = profile.Role
	}
	if profile.Phone != user.Profile.Phone {
		profileUpdates["phone"] = profile.Phone
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(userUpdates).Error; err != nil {
				return err
			}
		}
		if len(profileUpdates) > 0 {
			if err := tx.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).Updates(profileUpdates).Error; err != nil {
				return err
			}
		}
		if active, ok := userUpdates["is_active"].(bool); ok && !active {
			return tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error
		}
		return nil
	})
	if err != nil {
		return UserDTO{}, mapDatabaseError(err)
	}

	return s.GetUser(ctx, user.ID)
}

// DeactivateUser flips the account to inactive and ends its sessions. Admins
// cannot deactivate themselves.
func (s *UserService) DeactivateUser(ctx context.Context, actor models.User, userID uint) (UserDTO, error) {
	user, err := loadUser(ctx, s.db, userID)
	if err != nil {
		return UserDTO{}, err
	}
	if user.ID == actor.ID {
		return UserDTO{}, apperror.New(apperror.CodeValidation, selfDeactivationMessage)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.ID).Delete(&models.Session{}).Error
	})
	if err != nil {
		return UserDTO{}, mapDatabaseError(err)
	}

	return s.GetUser(ctx, user.ID)
}

// DeleteUser removes the account for good. Tasks assigned to the user stay and
// lose their assignee; projects, tasks and comments the user created go with it.
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	if _, err := loadUser(ctx, s.db, userID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("assignee_id = ?", userID).Update("assignee_id", nil).Error; err != nil {
			return fmt.Errorf("clear assignee: %w", err)
		}

		var projectIDs []uint
		if err := tx.Model(&models.Project{}).Where("created_by_id = ?", userID).Pluck("id", &projectIDs).Error; err != nil {
			return fmt.Errorf("load owned projects: %w", err)
		}
		if err := deleteProjects(tx, projectIDs); err != nil {
			return err
		}

		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("created_by_id = ?", userID).Pluck("id", &taskIDs).Error; err != nil {
			return fmt.Errorf("load created tasks: %w", err)
		}
		if err := deleteTasks(tx, taskIDs); err != nil {
			return err
		}

		steps := []struct {
			what  string
			model interface{}
			where string
		}{
			{"comments", &models.TaskComment{}, "author_id = ?"},
			{"memberships", &models.ProjectMember{}, "user_id = ?"},
			{"sessions", &models.Session{}, "user_id = ?"},
			{"profile", &models.UserProfile{}, "user_id = ?"},
			{"user", &models.User{}, "id = ?"},
		}
		for _, step := range steps {
			if err := tx.Where(step.where, userID).Delete(step.model).Error; err != nil {
				return fmt.Errorf("delete %s: %w", step.what, err)
			}
		}
		return nil
	})
}

func (s *UserService) normalizeProfile(ctx context.Context, departmentID *uint, position string, role string, phone string) (models.UserProfile, fieldErrors) {
	errs := fieldErrors{}

	position, msg := normalizeOptionalString(position, "position", 200)
	if msg != "" {
		errs.add("position", msg)
	}
	phone, msg = normalizeOptionalString(phone, "phone", 20)
	if msg != "" {
		errs.add("phone", msg)
	}

	parsedRole := models.Role(strings.TrimSpace(role))
	if parsedRole == "" {
		parsedRole = models.RoleEmployee
	}
	if !parsedRole.Valid() {
		errs.add("role", "role must be one of: employee, team_lead, manager, admin")
	}

	if departmentID != nil {
		exists, err := ensureDepartmentExists(ctx, s.db, *departmentID)
		if err != nil {
			errs.add("department_id", "department could not be checked")
		} else if !exists {
			errs.add("department_id", "select a valid department")
		}
	}

	return models.UserProfile{
		DepartmentID: departmentID,
		Position:     position,
		Role:         parsedRole,
		Phone:        phone,
		AvatarColor:  models.DefaultAvatarColor,
	}, errs
}

func (s *UserService) usernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check username uniqueness: %w", err)
	}
	return count > 0, nil
}

func (s *UserService) emailExists(ctx context.Context, email string, excludeID *uint) (bool, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check email uniqueness: %w", err)
	}
	return count > 0, nil
}

func normalizeEmail(raw string) (string, string) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", ""
	}
	if len(value) > 254 {
		return "", "email must be at most 254 characters"
	}
	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != value {
		return "", "enter a valid email address"
	}
	return value, ""
}

func loadUser(ctx context.Context, db *gorm.DB, userID uint) (models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).Preload("Profile.Department").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, notFound("user")
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
