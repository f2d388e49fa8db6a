package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/facturacion-api/internal/application/auth"
	"github.com/tu-usuario/facturacion-api/internal/application/dto"
	"github.com/tu-usuario/facturacion-api/internal/domain"
	"github.com/tu-usuario/facturacion-api/internal/domain/entity"
	pkgjwt "github.com/tu-usuario/facturacion-api/pkg/jwt"
)

type fakeUserRepo struct {
	byEmail map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

var testCfg = auth.JWTConfig{
	Secret:     "secreto-de-test",
	ExpMinutes: 60,
	Issuer:     "facturacion-api-test",
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
}

func TestRegisterYLogin(t *testing.T) {
	repo := newFakeUserRepo()
	uc := auth.NewAuthUseCase(repo, testCfg, fixedClock)

	reg, err := uc.Register(context.Background(), dto.RegisterRequest{
		Nombre:   "Ana",
		Email:    "ana@test.co",
		Password: "contraseña-larga",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ana@test.co", reg.User.Email)

	// El hash jamás viaja en la respuesta y no es el password en claro.
	stored := repo.byEmail["ana@test.co"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "contraseña-larga", stored.PasswordHash)

	login, err := uc.Login(context.Background(), dto.LoginRequest{
		Email:    "ana@test.co",
		Password: "contraseña-larga",
	})
	require.NoError(t, err)

	userID, email, err := pkgjwt.Parse(testCfg.Secret, login.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, userID)
	assert.Equal(t, "ana@test.co", email)
}

func TestRegister_EmailDuplicado(t *testing.T) {
	repo := newFakeUserRepo()
	uc := auth.NewAuthUseCase(repo, testCfg, fixedClock)

	in := dto.RegisterRequest{Nombre: "Ana", Email: "ana@test.co", Password: "contraseña-larga"}
	_, err := uc.Register(context.Background(), in)
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_Validacion(t *testing.T) {
	uc := auth.NewAuthUseCase(newFakeUserRepo(), testCfg, fixedClock)

	_, err := uc.Register(context.Background(), dto.RegisterRequest{
		Email:    "sin-arroba",
		Password: "corta",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "nombre")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	repo := newFakeUserRepo()
	uc := auth.NewAuthUseCase(repo, testCfg, fixedClock)

	_, err := uc.Register(context.Background(), dto.RegisterRequest{
		Nombre: "Ana", Email: "ana@test.co", Password: "contraseña-larga",
	})
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), dto.LoginRequest{
		Email: "ana@test.co", Password: "otra-cosa",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(context.Background(), dto.LoginRequest{
		Email: "nadie@test.co", Password: "lo-que-sea",
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
