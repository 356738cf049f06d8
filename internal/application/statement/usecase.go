package statement

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// Data datos ya resueltos para el estado de cuenta de un usuario.
type Data struct {
	User         *entity.User
	Transactions []*entity.Transaction
	Pending      int // puntos retenidos en redenciones sin procesar
	GeneratedAt  time.Time
}

// Generator renderiza el estado de cuenta. La implementación concreta vive en
// infrastructure/pdf.
type Generator interface {
	GenerateStatement(ctx context.Context, data Data) ([]byte, error)
}

// UseCase genera el estado de cuenta de puntos del usuario autenticado.
type UseCase struct {
	userRepo  repository.UserRepository
	txRepo    repository.TransactionRepository
	generator Generator
	now       func() time.Time
}

// NewUseCase construye el caso de uso inyectando sus dependencias.
func NewUseCase(userRepo repository.UserRepository, txRepo repository.TransactionRepository, generator Generator) *UseCase {
	return &UseCase{userRepo: userRepo, txRepo: txRepo, generator: generator, now: time.Now}
}

// WithClock reemplaza el reloj (para tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Download arma el estado de cuenta con las últimas transacciones del usuario
// y lo renderiza.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrUserNotFound     si el usuario no existe.
func (uc *UseCase) Download(ctx context.Context, userID string) (pdfBytes []byte, filename string, err error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, "", fmt.Errorf("statement: obtener usuario: %w", err)
	}
	if user == nil {
		return nil, "", domain.ErrUserNotFound
	}

	txs, _, err := uc.txRepo.List(repository.TransactionFilter{UserID: user.ID}, 200, 0)
	if err != nil {
		return nil, "", fmt.Errorf("statement: obtener transacciones: %w", err)
	}
	pending, err := uc.txRepo.SumPendingRedemptions(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("statement: obtener redenciones pendientes: %w", err)
	}

	pdfBytes, err = uc.generator.GenerateStatement(ctx, Data{
		User:         user,
		Transactions: txs,
		Pending:      pending,
		GeneratedAt:  uc.now(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("statement: generación fallida: %w", err)
	}

	filename = fmt.Sprintf("estado_cuenta_%s.pdf", user.ExternalID)
	return pdfBytes, filename, nil
}
