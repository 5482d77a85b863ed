package services

import (
	"fmt"
	"time"

	"dm-lab/auth"
	"dm-lab/domain"
	"dm-lab/errors"
	"dm-lab/repositories"
)

type IAuthService interface {
	Signup(fullName, email, password string) (Token, domain.User, error)
	Login(email, password string) (Token, domain.User, error)
	CheckAuth(userID string) (domain.User, error)
	UpdateProfilePic(userID, profilePic string) (domain.User, error)
	DeleteAccount(userID string) error
}

type Token string

func (t Token) String() string {
	return string(t)
}

type AuthService struct {
	userRepository    repositories.IUserRepository
	authTokenDuration time.Duration
}

func NewAuthService(repo repositories.IUserRepository, authTokenDuration time.Duration) IAuthService {
	return &AuthService{userRepository: repo, authTokenDuration: authTokenDuration}
}

func (s *AuthService) Signup(fullName, email, password string) (Token, domain.User, error) {
	valReq := auth.SignupRequest{
		FullName: fullName,
		Email:    email,
		Password: password,
	}

	// 1. Validate business rules (email format, password complexity)
	// We check this before any expensive cryptographic operation.
	if err := auth.ValidateSignup(valReq); err != nil {
		return "", domain.User{}, fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// 2. Hash the password using Argon2id
	// Done in the service layer to keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash
	userID, err := s.userRepository.CreateUser(fullName, email, hashedPassword)
	if err != nil {
		return "", domain.User{}, err // Propagates ErrUserAlreadyExists if email is taken
	}

	// 4. Generate the initial session token
	token, err := auth.GenerateToken(userID, []string{"user"}, s.authTokenDuration)
	if err != nil {
		return "", domain.User{}, errors.ErrTokenGeneration
	}

	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return "", domain.User{}, err
	}
	return Token(token), user.User, nil
}

func (s *AuthService) Login(email, password string) (Token, domain.User, error) {
	// 1. Retrieve user by email from storage
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	// 2. Compare the provided password with the stored hash
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	// 3. Issue the JWT token
	token, err := auth.GenerateToken(user.ID, user.Roles, s.authTokenDuration)
	if err != nil {
		return "", domain.User{}, errors.ErrTokenGeneration
	}

	return Token(token), user.User, nil
}

func (s *AuthService) CheckAuth(userID string) (domain.User, error) {
	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return domain.User{}, err
	}
	return user.User, nil
}

// UpdateProfilePic validates the picture payload before touching the store.
func (s *AuthService) UpdateProfilePic(userID, profilePic string) (domain.User, error) {
	if err := ValidateMediaRef(profilePic, MediaImage); err != nil {
		return domain.User{}, err
	}
	return s.userRepository.UpdateProfilePic(userID, profilePic)
}

func (s *AuthService) DeleteAccount(userID string) error {
	return s.userRepository.DeleteUser(userID)
}
