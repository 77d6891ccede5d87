package services

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"urbantales/internal/apperror"
	"urbantales/internal/models"
	"urbantales/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const maxUsernameAttempts = 20

var (
	usernameSpaces  = regexp.MustCompile(`\s+`)
	usernameInvalid = regexp.MustCompile(`[^a-z0-9\-]`)
	usernameSuffix  = regexp.MustCompile(`-\d+$`)
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID string
	Role   string
}

// SellerSignup is the input of SignupSeller.
type SellerSignup struct {
	FullName string
	Username string
	Email    string
	Phone    string
	ShopName string
	Address  string
	Bio      string
	Password string
}

// SellerProfileUpdate lists the profile fields a seller may change; nil means unchanged.
type SellerProfileUpdate struct {
	ShopName *string
	Address  *string
	Bio      *string
	Phone    *string
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	users     repositories.UserRepository
	sellers   repositories.SellerRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *logrus.Logger
	suffix    func() int
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, sellers repositories.SellerRepository, jwtSecret string, tokenTTL time.Duration, log *logrus.Logger) *AuthService {
	return &AuthService{
		users:     users,
		sellers:   sellers,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
		suffix:    func() int { return 1000 + rand.Intn(9000) },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// RegisterBuyer registers a new buyer, hashes their password, and saves them to the database.
func (s *AuthService) RegisterBuyer(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	user.Name = strings.TrimSpace(user.Name)

	if _, err := s.users.GetByEmail(ctx, user.Email); err == nil {
		return apperror.Conflict("email '%s' already registered", user.Email)
	} else if !apperror.Is(err, apperror.KindNotFound) {
		return err
	}

	hashed, err := hashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = hashed

	return s.users.Create(ctx, user)
}

// LoginBuyer authenticates a buyer and returns a JWT token if successful.
func (s *AuthService) LoginBuyer(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return "", nil, apperror.Unauthorized("invalid credentials")
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := s.issueToken(user.ID, models.RoleBuyer)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// SignupSeller creates a seller account, generating a unique username when none is given.
func (s *AuthService) SignupSeller(ctx context.Context, in SellerSignup) (string, *models.Seller, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.sellers.GetByEmail(ctx, email); err == nil {
		return "", nil, apperror.Conflict("seller with email '%s' already exists", email)
	} else if !apperror.Is(err, apperror.KindNotFound) {
		return "", nil, err
	}

	username, err := s.uniqueUsername(ctx, in.Username, in.FullName)
	if err != nil {
		return "", nil, err
	}
	hashed, err := hashPassword(in.Password)
	if err != nil {
		return "", nil, err
	}

	seller := &models.Seller{
		FullName: strings.TrimSpace(in.FullName),
		Username: username,
		Email:    email,
		Phone:    strings.TrimSpace(in.Phone),
		ShopName: strings.TrimSpace(in.ShopName),
		Address:  strings.TrimSpace(in.Address),
		Bio:      strings.TrimSpace(in.Bio),
		Password: hashed,
	}
	if err := s.sellers.Create(ctx, seller); err != nil {
		return "", nil, err
	}
	s.log.WithFields(logrus.Fields{"seller_id": seller.ID, "username": seller.Username}).Info("seller signed up")

	token, err := s.issueToken(seller.ID, models.RoleSeller)
	if err != nil {
		return "", nil, err
	}
	return token, seller, nil
}

// usernameBase turns "Jane  Doe!" into "jane-doe".
func usernameBase(fullName string) string {
	base := strings.ToLower(strings.TrimSpace(fullName))
	base = usernameSpaces.ReplaceAllString(base, "-")
	return usernameInvalid.ReplaceAllString(base, "")
}

func (s *AuthService) uniqueUsername(ctx context.Context, requested, fullName string) (string, error) {
	candidate := strings.TrimSpace(requested)
	if candidate == "" {
		candidate = fmt.Sprintf("%s-%d", usernameBase(fullName), s.suffix())
	}
	stem := usernameSuffix.ReplaceAllString(candidate, "")

	for i := 0; i < maxUsernameAttempts; i++ {
		_, err := s.sellers.GetByUsername(ctx, candidate)
		if apperror.Is(err, apperror.KindNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", stem, s.suffix())
	}
	return "", apperror.Conflict("could not allocate a unique username for '%s'", stem)
}

// LoginSeller authenticates a seller and returns a JWT token if successful.
func (s *AuthService) LoginSeller(ctx context.Context, email, password string) (string, *models.Seller, error) {
	seller, err := s.sellers.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return "", nil, apperror.Unauthorized("invalid credentials")
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(seller.Password), []byte(password)); err != nil {
		return "", nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := s.issueToken(seller.ID, models.RoleSeller)
	if err != nil {
		return "", nil, err
	}
	return token, seller, nil
}

// GetBuyer returns a buyer account.
func (s *AuthService) GetBuyer(ctx context.Context, buyerID string) (*models.User, error) {
	return s.users.GetByID(ctx, buyerID)
}

// GetSellerProfile returns the seller's own account.
func (s *AuthService) GetSellerProfile(ctx context.Context, sellerID string) (*models.Seller, error) {
	return s.sellers.GetByID(ctx, sellerID)
}

// UpdateSellerProfile changes the editable profile fields only.
func (s *AuthService) UpdateSellerProfile(ctx context.Context, sellerID string, in SellerProfileUpdate) (*models.Seller, error) {
	changes := make(map[string]interface{})
	if in.ShopName != nil {
		changes["shop_name"] = strings.TrimSpace(*in.ShopName)
	}
	if in.Address != nil {
		changes["address"] = strings.TrimSpace(*in.Address)
	}
	if in.Bio != nil {
		changes["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.Phone != nil {
		changes["phone"] = strings.TrimSpace(*in.Phone)
	}
	if len(changes) == 0 {
		return s.sellers.GetByID(ctx, sellerID)
	}
	return s.sellers.UpdateProfile(ctx, sellerID, changes)
}

func (s *AuthService) issueToken(userID, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperror.Dependency(err, "failed to generate token")
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the identity it carries.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.WithError(err).Debug("token validation failed")
		return nil, apperror.Unauthorized("invalid or expired token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperror.Unauthorized("invalid or expired token")
	}
	userID, _ := mapClaims["user_id"].(string)
	role, _ := mapClaims["role"].(string)
	if userID == "" || (role != models.RoleBuyer && role != models.RoleSeller) {
		return nil, apperror.Unauthorized("token does not carry an identity")
	}
	return &Claims{UserID: userID, Role: role}, nil
}
