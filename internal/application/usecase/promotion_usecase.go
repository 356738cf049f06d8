package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Puntos-api/internal/application/dto"
	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// PromotionUseCase reglas de negocio para promociones: CRUD con reglas de
// inmutabilidad una vez comenzada la ventana y vistas recortadas por rol.
type PromotionUseCase struct {
	promoRepo repository.PromotionRepository
	now       func() time.Time
}

// NewPromotionUseCase construye el caso de uso de promociones.
func NewPromotionUseCase(promoRepo repository.PromotionRepository) *PromotionUseCase {
	return &PromotionUseCase{promoRepo: promoRepo, now: time.Now}
}

// WithClock reemplaza el reloj (para tests).
func (uc *PromotionUseCase) WithClock(now func() time.Time) *PromotionUseCase {
	uc.now = now
	return uc
}

// Create crea una promoción (manager o superior).
func (uc *PromotionUseCase) Create(in dto.CreatePromotionRequest) (*dto.PromotionResponse, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name es requerido", domain.ErrValidation)
	}
	if in.Type != entity.PromotionAutomatic && in.Type != entity.PromotionOneTime {
		return nil, fmt.Errorf("%w: type debe ser automatic u one-time", domain.ErrValidation)
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, fmt.Errorf("%w: end_time debe ser posterior a start_time", domain.ErrValidation)
	}
	if in.EndTime.Before(uc.now()) {
		return nil, fmt.Errorf("%w: end_time no puede estar en el pasado", domain.ErrValidation)
	}
	if err := validatePromotionBenefit(in.MinSpending, in.Rate, in.Points); err != nil {
		return nil, err
	}
	p := &entity.Promotion{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Type:        in.Type,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		MinSpending: in.MinSpending,
		Rate:        in.Rate,
		Points:      in.Points,
		CreatedAt:   uc.now(),
	}
	if err := uc.promoRepo.Create(p); err != nil {
		return nil, err
	}
	return toPromotionResponse(p, true), nil
}

// Get devuelve una promoción. Los usuarios regulares solo ven promociones
// vigentes que no hayan usado, y sin los campos de ventana.
func (uc *PromotionUseCase) Get(actor Actor, id string) (*dto.PromotionResponse, error) {
	p, err := uc.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if actor.Role.AtLeast(entity.RoleManager) {
		return toPromotionResponse(p, true), nil
	}
	if !p.Active(uc.now()) {
		return nil, domain.ErrNotFound
	}
	if p.Type == entity.PromotionOneTime {
		used, err := uc.promoRepo.HasUsed(actor.ID, p.ID)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, domain.ErrNotFound
		}
	}
	return toPromotionResponse(p, false), nil
}

// List lista promociones. Para regulares solo las disponibles (vigentes y no
// usadas); started/ended son filtros exclusivos de manager+.
func (uc *PromotionUseCase) List(actor Actor, f dto.PromotionListFilters, page dto.PageRequest) (*dto.ListResponse[dto.PromotionResponse], error) {
	manager := actor.Role.AtLeast(entity.RoleManager)
	if !manager && (f.Started != nil || f.Ended != nil) {
		return nil, fmt.Errorf("%w: started y ended requieren rol manager", domain.ErrValidation)
	}
	if f.Started != nil && f.Ended != nil {
		return nil, fmt.Errorf("%w: started y ended son excluyentes", domain.ErrValidation)
	}

	var (
		promos []*entity.Promotion
		total  int
		err    error
	)
	if manager {
		promos, total, err = uc.promoRepo.List(repository.PromotionFilter{
			Name:    f.Name,
			Type:    f.Type,
			Started: f.Started,
			Ended:   f.Ended,
		}, uc.now(), page.Limit, page.Offset())
	} else {
		promos, total, err = uc.promoRepo.ListAvailable(actor.ID, uc.now(), page.Limit, page.Offset())
	}
	if err != nil {
		return nil, err
	}

	out := &dto.ListResponse[dto.PromotionResponse]{Count: total, Results: make([]dto.PromotionResponse, 0, len(promos))}
	for _, p := range promos {
		if !manager && f.Name != "" && !containsFold(p.Name, f.Name) {
			continue
		}
		if !manager && f.Type != "" && p.Type != f.Type {
			continue
		}
		out.Results = append(out.Results, *toPromotionResponse(p, manager))
	}
	return out, nil
}

// Update aplica el parche de PATCH /promotions/:id (manager o superior).
// Una vez comenzada la promoción, type y start_time quedan congelados; el
// resto sigue siendo editable mientras no haya terminado.
func (uc *PromotionUseCase) Update(id string, in dto.UpdatePromotionRequest) (*dto.PromotionResponse, error) {
	p, err := uc.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	now := uc.now()
	started := p.Started(now)

	if in.Type != nil {
		if started {
			return nil, fmt.Errorf("%w: type no puede cambiar en una promoción comenzada", domain.ErrValidation)
		}
		if *in.Type != entity.PromotionAutomatic && *in.Type != entity.PromotionOneTime {
			return nil, fmt.Errorf("%w: type debe ser automatic u one-time", domain.ErrValidation)
		}
		p.Type = *in.Type
	}
	if in.StartTime != nil {
		if started {
			return nil, fmt.Errorf("%w: start_time no puede cambiar en una promoción comenzada", domain.ErrValidation)
		}
		if in.StartTime.Before(now) {
			return nil, fmt.Errorf("%w: start_time no puede estar en el pasado", domain.ErrValidation)
		}
		p.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		if in.EndTime.Before(now) {
			return nil, fmt.Errorf("%w: end_time no puede estar en el pasado", domain.ErrValidation)
		}
		p.EndTime = *in.EndTime
	}
	if !p.EndTime.After(p.StartTime) {
		return nil, fmt.Errorf("%w: end_time debe ser posterior a start_time", domain.ErrValidation)
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name no puede ser vacío", domain.ErrValidation)
		}
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.MinSpending != nil {
		p.MinSpending = in.MinSpending
	}
	if in.Rate != nil {
		p.Rate = in.Rate
	}
	if in.Points != nil {
		p.Points = in.Points
	}
	if err := validatePromotionBenefit(p.MinSpending, p.Rate, p.Points); err != nil {
		return nil, err
	}
	if err := uc.promoRepo.Update(p); err != nil {
		return nil, err
	}
	return toPromotionResponse(p, true), nil
}

// Delete elimina una promoción que aún no comenzó (manager o superior).
func (uc *PromotionUseCase) Delete(id string) error {
	p, err := uc.promoRepo.GetByID(id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	if p.Started(uc.now()) {
		return fmt.Errorf("%w: no se puede eliminar una promoción comenzada", domain.ErrForbidden)
	}
	return uc.promoRepo.Delete(id)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func validatePromotionBenefit(minSpending, rate *decimal.Decimal, points *int) error {
	if minSpending != nil && minSpending.IsNegative() {
		return fmt.Errorf("%w: min_spending debe ser positivo", domain.ErrValidation)
	}
	if rate != nil && rate.IsNegative() {
		return fmt.Errorf("%w: rate debe ser positivo", domain.ErrValidation)
	}
	if points != nil && *points < 0 {
		return fmt.Errorf("%w: points debe ser positivo", domain.ErrValidation)
	}
	return nil
}

func toPromotionResponse(p *entity.Promotion, manager bool) *dto.PromotionResponse {
	out := &dto.PromotionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Type:        p.Type,
		MinSpending: p.MinSpending,
		Rate:        p.Rate,
		Points:      p.Points,
	}
	if manager {
		st, et := p.StartTime, p.EndTime
		out.StartTime = &st
		out.EndTime = &et
	}
	return out
}
