package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	"github.com/tu-usuario/facturacion-api/internal/domain/repository"
	"github.com/tu-usuario/facturacion-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	clock    func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth. clock nil usa time.Now.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, clock func() time.Time) *AuthUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, clock: clock}
}

// Register crea un usuario: hashea password con bcrypt, persiste y devuelve
// el token para que el cliente quede autenticado de inmediato.
// Devuelve ErrEmailAlreadyExists si el email ya está registrado.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := validateRegister(in); err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.clock()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         in.Nombre,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: *toUserResponse(user)}, nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: *toUserResponse(user)}, nil
}

func validateRegister(in dto.RegisterRequest) error {
	verr := domain.NewValidationError()
	if strings.TrimSpace(in.Nombre) == "" {
		verr.Add("nombre", "El nombre es obligatorio")
	}
	if strings.TrimSpace(in.Email) == "" {
		verr.Add("email", "El email es obligatorio")
	} else if !strings.Contains(in.Email, "@") {
		verr.Add("email", "El email debe ser una dirección válida")
	}
	if len(in.Password) < 8 {
		verr.Add("password", "La contraseña debe tener al menos 8 caracteres")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:     u.ID,
		Nombre: u.Name,
		Email:  u.Email,
	}
}
