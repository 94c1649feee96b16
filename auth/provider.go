package auth

import (
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/raghav0014/AI-Feedback/errs"
	"github.com/raghav0014/AI-Feedback/models"
)

// Provider is the single authentication capability the application talks
// to. The active variant is chosen once at startup from configuration; no
// call site branches on the provider kind.
type Provider interface {
	Register(name, email, password string) (*models.User, string, error)
	Login(email, password string) (*models.User, string, string, error)
	Verify(tokenString string) (*models.User, error)
	Refresh(refreshToken string) (string, error)
}

// Select picks the provider variant for the configured name. External
// providers (Firebase, Auth0) are integration points with their own SDKs;
// until one is wired in, anything other than "demo" falls back to the demo
// provider with a warning.
func Select(providerName, jwtSecret string, db *gorm.DB) Provider {
	if providerName != "demo" && providerName != "" {
		log.Printf("Auth provider %q is not available in this build, using demo auth", providerName)
	}
	return NewDemoProvider(db, jwtSecret)
}

// DemoProvider authenticates against the local user table with bcrypt
// hashes and signs its own JWTs.
type DemoProvider struct {
	db     *gorm.DB
	secret string
}

func NewDemoProvider(db *gorm.DB, secret string) *DemoProvider {
	return &DemoProvider{db: db, secret: secret}
}

// Register creates a user account and returns it with an access token.
func (p *DemoProvider) Register(name, email, password string) (*models.User, string, error) {
	if email == "" || password == "" || name == "" {
		return nil, "", errs.Validation("Name, email and password are required")
	}
	if len(password) < 6 {
		return nil, "", errs.Validation("Password must be at least 6 characters")
	}

	var existing models.User
	if p.db.Where("email = ?", email).First(&existing).RowsAffected > 0 {
		return nil, "", errs.Conflict("User with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errs.Internal("Failed to hash password", err)
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
	}
	if err := p.db.Create(&user).Error; err != nil {
		return nil, "", errs.Upstream("Failed to create user", err)
	}

	token, err := p.signAccessToken(&user)
	if err != nil {
		return nil, "", err
	}

	user.Password = ""
	return &user, token, nil
}

// Login checks credentials and returns the user with access and refresh
// tokens.
func (p *DemoProvider) Login(email, password string) (*models.User, string, string, error) {
	var user models.User
	if p.db.Where("email = ?", email).First(&user).RowsAffected == 0 {
		return nil, "", "", errs.Unauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", "", errs.Unauthorized("Invalid credentials")
	}

	token, err := p.signAccessToken(&user)
	if err != nil {
		return nil, "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(time.Hour * 24 * 7).Unix(),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(p.secret))
	if err != nil {
		return nil, "", "", errs.Internal("Failed to generate refresh token", err)
	}

	user.Password = ""
	return &user, token, refreshToken, nil
}

// Verify parses a token and loads the current user record.
func (p *DemoProvider) Verify(tokenString string) (*models.User, error) {
	claims, err := p.parse(tokenString)
	if err != nil {
		return nil, err
	}

	id, ok := claims["id"].(float64)
	if !ok {
		return nil, errs.Unauthorized("Invalid user ID in token")
	}

	var user models.User
	if err := p.db.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Unauthorized("User not found")
		}
		return nil, errs.Upstream("Failed to fetch user", err)
	}

	user.Password = ""
	return &user, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (p *DemoProvider) Refresh(refreshToken string) (string, error) {
	claims, err := p.parse(refreshToken)
	if err != nil {
		return "", err
	}

	id, ok := claims["id"].(float64)
	if !ok {
		return "", errs.Unauthorized("Invalid refresh token")
	}

	var user models.User
	if err := p.db.First(&user, uint(id)).Error; err != nil {
		return "", errs.Unauthorized("User not found")
	}

	return p.signAccessToken(&user)
}

func (p *DemoProvider) signAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.secret))
	if err != nil {
		return "", errs.Internal("Failed to generate token", err)
	}
	return token, nil
}

func (p *DemoProvider) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(p.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errs.Unauthorized("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errs.Unauthorized("Invalid token claims")
	}
	return claims, nil
}
