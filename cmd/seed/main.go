// seed crea el superusuario inicial del programa de puntos.
//
// Uso: go run ./cmd/seed <external_id> <email> <password>
// La cuenta queda verificada y activada; con ella se promueven los primeros
// managers y cajeros desde la API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Puntos-api/internal/application/auth"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Puntos-api/pkg/config"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "uso: seed <external_id> <email> <password>")
		os.Exit(1)
	}
	externalID, email, password := os.Args[1], os.Args[2], os.Args[3]

	if !auth.ValidPassword(password) {
		fmt.Fprintln(os.Stderr, "la contraseña no cumple la política (8-20, mayúscula, minúscula, dígito y símbolo)")
		os.Exit(1)
	}

	cfg, err := config.Load([]string{"1"}) // el seed no escucha; puerto irrelevante
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash de contraseña: %v\n", err)
		os.Exit(1)
	}
	h := string(hash)

	userRepo := postgres.NewUserRepository(pool)
	user := &entity.User{
		ID:           uuid.New().String(),
		ExternalID:   externalID,
		Name:         "Superusuario",
		Email:        email,
		PasswordHash: &h,
		Role:         entity.RoleSuperuser,
		Verified:     true,
		CreatedAt:    time.Now(),
	}
	if err := userRepo.Create(user); err != nil {
		fmt.Fprintf(os.Stderr, "crear superusuario: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("superusuario %s creado (id %s)\n", externalID, user.ID)
}
