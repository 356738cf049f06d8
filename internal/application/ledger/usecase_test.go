package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Puntos-api/internal/application/ledger"
	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newLedger(s *memStore) *ledger.UseCase {
	uc := ledger.NewUseCase(&memTxRunner{s}, &memUserRepo{s}, &memTxRepo{s}, &memPromoRepo{s}, &memEventRepo{s})
	return uc.WithClock(func() time.Time { return testNow })
}

func seedUser(s *memStore, externalID string, role entity.Role, points int) *entity.User {
	u := &entity.User{
		ID:         uuid.New().String(),
		ExternalID: externalID,
		Name:       "Usuario " + externalID,
		Email:      externalID + "@campus.edu",
		Role:       role,
		Points:     points,
		Verified:   true,
		CreatedAt:  testNow,
	}
	s.users[u.ID] = u
	return u
}

func seedEvent(s *memStore, name string, budget int, published bool) *entity.Event {
	e := &entity.Event{
		ID:           uuid.New().String(),
		Name:         name,
		StartTime:    testNow.Add(-time.Hour),
		EndTime:      testNow.Add(2 * time.Hour),
		Published:    published,
		PointsTotal:  budget,
		PointsRemain: budget,
		CreatedAt:    testNow,
	}
	s.events[e.ID] = e
	return e
}

func fptr(f float64) *float64 { return &f }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Purchase
// ──────────────────────────────────────────────────────────────────────────────

// Compra sin promociones: 4 puntos por unidad gastada, acreditados al comprador.
func TestPurchase_PuntosBase(t *testing.T) {
	s := newMemStore()
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	buyer := seedUser(s, "est-100", entity.RoleRegular, 0)

	spent := dec("40.00")
	tx, err := newLedger(s).Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:    cashier.ID,
		ExternalID: buyer.ExternalID,
		Spent:      &spent,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.TxPurchase, tx.Type)
	assert.Equal(t, 160, tx.Amount, "40.00 gastados son 160 puntos base")
	assert.False(t, tx.Suspicious)
	assert.Equal(t, 160, s.users[buyer.ID].Points, "el saldo debe acreditarse")
	require.NotNil(t, tx.Spent)
	assert.True(t, tx.Spent.Equal(spent))
}

// Compra con una promoción automática por tasa: base + round(spent*100*rate).
func TestPurchase_ConPromocionAutomatica(t *testing.T) {
	s := newMemStore()
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	buyer := seedUser(s, "est-100", entity.RoleRegular, 0)
	promo := &entity.Promotion{
		ID:          uuid.New().String(),
		Name:        "Semana de bienvenida",
		Type:        entity.PromotionAutomatic,
		StartTime:   testNow.Add(-time.Hour),
		EndTime:     testNow.Add(time.Hour),
		MinSpending: decPtr("100"),
		Rate:        decPtr("0.05"),
	}
	s.promos[promo.ID] = promo

	spent := dec("100")
	tx, err := newLedger(s).Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:    cashier.ID,
		ExternalID: buyer.ExternalID,
		Spent:      &spent,
	})
	require.NoError(t, err)

	// base 400 + bono 100*100*0.05 = 500
	assert.Equal(t, 900, tx.Amount)
	assert.Equal(t, []string{promo.ID}, tx.PromotionIDs, "la promoción aplicada queda asociada")
	assert.Equal(t, 900, s.users[buyer.ID].Points)
}

// Un cajero marcado sospechoso crea la compra retenida: la transacción existe
// pero el saldo no se acredita.
func TestPurchase_CajeroSospechoso_RetieneCredito(t *testing.T) {
	s := newMemStore()
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	s.users[cashier.ID].Suspicious = true
	buyer := seedUser(s, "est-100", entity.RoleRegular, 0)

	spent := dec("25")
	tx, err := newLedger(s).Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:    cashier.ID,
		ExternalID: buyer.ExternalID,
		Spent:      &spent,
	})
	require.NoError(t, err)

	assert.True(t, tx.Suspicious, "la compra hereda la marca del cajero")
	assert.Equal(t, 100, tx.Amount, "los puntos se calculan igual")
	assert.Equal(t, 0, s.users[buyer.ID].Points, "el crédito queda retenido")
}

// Una compra consume la one-time seleccionada; reutilizarla es rechazado.
func TestPurchase_OneTimeSeConsume(t *testing.T) {
	s := newMemStore()
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	buyer := seedUser(s, "est-100", entity.RoleRegular, 0)
	promo := &entity.Promotion{
		ID:        uuid.New().String(),
		Name:      "Cupón día del estudiante",
		Type:      entity.PromotionOneTime,
		StartTime: testNow.Add(-time.Hour),
		EndTime:   testNow.Add(time.Hour),
		Points:    intPtr(50),
	}
	s.promos[promo.ID] = promo
	uc := newLedger(s)

	spent := dec("10")
	tx, err := uc.Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:      cashier.ID,
		ExternalID:   buyer.ExternalID,
		Spent:        &spent,
		PromotionIDs: []string{promo.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 90, tx.Amount, "base 40 + bono plano 50")
	assert.True(t, s.used[key(buyer.ID, promo.ID)], "la one-time queda consumida")

	_, err = uc.Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:      cashier.ID,
		ExternalID:   buyer.ExternalID,
		Spent:        &spent,
		PromotionIDs: []string{promo.ID},
	})
	assert.ErrorIs(t, err, domain.ErrPromotionAlreadyUsed)
}

// Seleccionar una one-time fuera de vigencia invalida toda la compra.
func TestPurchase_OneTimeInactiva_TodoONada(t *testing.T) {
	s := newMemStore()
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	buyer := seedUser(s, "est-100", entity.RoleRegular, 0)
	promo := &entity.Promotion{
		ID:        uuid.New().String(),
		Name:      "Cupón vencido",
		Type:      entity.PromotionOneTime,
		StartTime: testNow.Add(-48 * time.Hour),
		EndTime:   testNow.Add(-24 * time.Hour),
		Points:    intPtr(50),
	}
	s.promos[promo.ID] = promo

	spent := dec("10")
	_, err := newLedger(s).Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:      cashier.ID,
		ExternalID:   buyer.ExternalID,
		Spent:        &spent,
		PromotionIDs: []string{promo.ID},
	})
	assert.ErrorIs(t, err, domain.ErrPromotionInactive)
	assert.Equal(t, 0, s.users[buyer.ID].Points, "nada se acredita si la selección es inválida")
	assert.Empty(t, s.txs, "no debe quedar transacción registrada")
}

// Carrera entre dos compras con la misma one-time: la prevalidación de ambas
// pasa, pero el registro de uso dentro de la transacción solo admite una.
// La segunda compra falla completa, sin acreditar nada.
func TestPurchase_OneTimeGanadaPorCompraConcurrente(t *testing.T) {
	s := newMemStore()
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	buyer := seedUser(s, "est-100", entity.RoleRegular, 0)
	promo := &entity.Promotion{
		ID:        uuid.New().String(),
		Name:      "Cupón único",
		Type:      entity.PromotionOneTime,
		StartTime: testNow.Add(-time.Hour),
		EndTime:   testNow.Add(time.Hour),
		Points:    intPtr(50),
	}
	s.promos[promo.ID] = promo

	// El hook consume la promoción justo antes de abrir la transacción,
	// como lo haría otra compra que validó en paralelo y comiteó primero.
	runner := &hookedTxRunner{
		inner:  &memTxRunner{s},
		before: func() { s.used[key(buyer.ID, promo.ID)] = true },
	}
	uc := ledger.NewUseCase(runner, &memUserRepo{s}, &memTxRepo{s}, &memPromoRepo{s}, &memEventRepo{s}).
		WithClock(func() time.Time { return testNow })

	spent := dec("10")
	_, err := uc.Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:      cashier.ID,
		ExternalID:   buyer.ExternalID,
		Spent:        &spent,
		PromotionIDs: []string{promo.ID},
	})
	assert.ErrorIs(t, err, domain.ErrPromotionAlreadyUsed)
	assert.Equal(t, 0, s.users[buyer.ID].Points, "la compra perdedora no acredita puntos")
}

func TestPurchase_ActorRegular_Prohibido(t *testing.T) {
	s := newMemStore()
	actor := seedUser(s, "est-001", entity.RoleRegular, 0)
	buyer := seedUser(s, "est-100", entity.RoleRegular, 0)

	spent := dec("10")
	_, err := newLedger(s).Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:    actor.ID,
		ExternalID: buyer.ExternalID,
		Spent:      &spent,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPurchase_MontoNegativo_Rechazado(t *testing.T) {
	s := newMemStore()
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	buyer := seedUser(s, "est-100", entity.RoleRegular, 0)

	spent := dec("-5")
	_, err := newLedger(s).Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:    cashier.ID,
		ExternalID: buyer.ExternalID,
		Spent:      &spent,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transfer
// ──────────────────────────────────────────────────────────────────────────────

// Una transferencia crea el par débito/crédito enlazado y mueve el saldo.
// El monto decimal se trunca hacia cero.
func TestTransfer_CreaParEnlazado(t *testing.T) {
	s := newMemStore()
	sender := seedUser(s, "est-001", entity.RoleRegular, 500)
	recipient := seedUser(s, "est-002", entity.RoleRegular, 10)

	out, err := newLedger(s).Transfer(context.Background(), ledger.TransferInput{
		SenderID:            sender.ID,
		RecipientExternalID: recipient.ExternalID,
		Amount:              fptr(120.9), // se trunca a 120
	})
	require.NoError(t, err)

	assert.Equal(t, -120, out.Debit.Amount)
	assert.Equal(t, 120, out.Credit.Amount)
	require.NotNil(t, out.Debit.RelatedID)
	require.NotNil(t, out.Credit.RelatedID)
	assert.Equal(t, recipient.ID, *out.Debit.RelatedID, "el débito apunta a la contraparte")
	assert.Equal(t, sender.ID, *out.Credit.RelatedID)
	assert.Equal(t, 380, s.users[sender.ID].Points)
	assert.Equal(t, 130, s.users[recipient.ID].Points)
}

func TestTransfer_SaldoInsuficiente(t *testing.T) {
	s := newMemStore()
	sender := seedUser(s, "est-001", entity.RoleRegular, 50)
	recipient := seedUser(s, "est-002", entity.RoleRegular, 0)

	_, err := newLedger(s).Transfer(context.Background(), ledger.TransferInput{
		SenderID:            sender.ID,
		RecipientExternalID: recipient.ExternalID,
		Amount:              fptr(51),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)
	assert.Equal(t, 50, s.users[sender.ID].Points, "el saldo no debe cambiar")
}

func TestTransfer_ASiMismo_Rechazada(t *testing.T) {
	s := newMemStore()
	sender := seedUser(s, "est-001", entity.RoleRegular, 100)

	_, err := newLedger(s).Transfer(context.Background(), ledger.TransferInput{
		SenderID:            sender.ID,
		RecipientExternalID: sender.ExternalID,
		Amount:              fptr(10),
	})
	assert.ErrorIs(t, err, domain.ErrSelfTransfer)
}

func TestTransfer_RemitenteNoVerificado(t *testing.T) {
	s := newMemStore()
	sender := seedUser(s, "est-001", entity.RoleRegular, 100)
	s.users[sender.ID].Verified = false
	recipient := seedUser(s, "est-002", entity.RoleRegular, 0)

	_, err := newLedger(s).Transfer(context.Background(), ledger.TransferInput{
		SenderID:            sender.ID,
		RecipientExternalID: recipient.ExternalID,
		Amount:              fptr(10),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Redemption
// ──────────────────────────────────────────────────────────────────────────────

// Solicitar una redención la deja pendiente sin debitar el saldo.
func TestRequestRedemption_QuedaPendienteSinDebitar(t *testing.T) {
	s := newMemStore()
	user := seedUser(s, "est-001", entity.RoleRegular, 300)

	tx, err := newLedger(s).RequestRedemption(context.Background(), ledger.RedemptionInput{
		UserID: user.ID,
		Amount: fptr(100),
	})
	require.NoError(t, err)

	assert.Equal(t, -100, tx.Amount)
	assert.True(t, tx.Pending())
	assert.Equal(t, 300, s.users[user.ID].Points, "el débito ocurre al procesar, no al solicitar")
}

// La disponibilidad descuenta las redenciones ya pendientes: no se pueden
// comprometer más puntos de los que hay.
func TestRequestRedemption_DisponibilidadDescuentaPendientes(t *testing.T) {
	s := newMemStore()
	user := seedUser(s, "est-001", entity.RoleRegular, 300)
	uc := newLedger(s)

	_, err := uc.RequestRedemption(context.Background(), ledger.RedemptionInput{UserID: user.ID, Amount: fptr(200)})
	require.NoError(t, err)

	_, err = uc.RequestRedemption(context.Background(), ledger.RedemptionInput{UserID: user.ID, Amount: fptr(150)})
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints, "solo quedan 100 disponibles")

	_, err = uc.RequestRedemption(context.Background(), ledger.RedemptionInput{UserID: user.ID, Amount: fptr(100)})
	assert.NoError(t, err, "una segunda pendiente dentro de la disponibilidad sí se acepta")
}

func TestRequestRedemption_UsuarioNoVerificado(t *testing.T) {
	s := newMemStore()
	user := seedUser(s, "est-001", entity.RoleRegular, 300)
	s.users[user.ID].Verified = false

	_, err := newLedger(s).RequestRedemption(context.Background(), ledger.RedemptionInput{
		UserID: user.ID,
		Amount: fptr(50),
	})
	assert.ErrorIs(t, err, domain.ErrUserNotVerified)
}

// Procesar una redención debita el saldo y registra quién la procesó.
func TestProcessRedemption_DebitaYMarca(t *testing.T) {
	s := newMemStore()
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	user := seedUser(s, "est-001", entity.RoleRegular, 300)
	uc := newLedger(s)

	pending, err := uc.RequestRedemption(context.Background(), ledger.RedemptionInput{UserID: user.ID, Amount: fptr(100)})
	require.NoError(t, err)

	processed, err := uc.ProcessRedemption(context.Background(), cashier.ID, pending.ID)
	require.NoError(t, err)

	require.NotNil(t, processed.ProcessedBy)
	assert.Equal(t, cashier.ID, *processed.ProcessedBy)
	assert.Equal(t, 200, s.users[user.ID].Points)
	assert.False(t, s.txs[pending.ID].Pending())
}

func TestProcessRedemption_YaProcesada(t *testing.T) {
	s := newMemStore()
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	user := seedUser(s, "est-001", entity.RoleRegular, 300)
	uc := newLedger(s)

	pending, err := uc.RequestRedemption(context.Background(), ledger.RedemptionInput{UserID: user.ID, Amount: fptr(100)})
	require.NoError(t, err)
	_, err = uc.ProcessRedemption(context.Background(), cashier.ID, pending.ID)
	require.NoError(t, err)

	_, err = uc.ProcessRedemption(context.Background(), cashier.ID, pending.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.Equal(t, 200, s.users[user.ID].Points, "no debe debitarse dos veces")
}

// Si el saldo bajó después de solicitar, el procesamiento falla sin efectos.
func TestProcessRedemption_SaldoYaNoAlcanza(t *testing.T) {
	s := newMemStore()
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	user := seedUser(s, "est-001", entity.RoleRegular, 300)
	uc := newLedger(s)

	pending, err := uc.RequestRedemption(context.Background(), ledger.RedemptionInput{UserID: user.ID, Amount: fptr(100)})
	require.NoError(t, err)

	s.users[user.ID].Points = 40 // el saldo cambió entre solicitud y procesamiento

	_, err = uc.ProcessRedemption(context.Background(), cashier.ID, pending.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)
	assert.Equal(t, 40, s.users[user.ID].Points)
	assert.Nil(t, s.txs[pending.ID].ProcessedBy, "la redención sigue pendiente")
}

// ──────────────────────────────────────────────────────────────────────────────
// Event awards
// ──────────────────────────────────────────────────────────────────────────────

// Premiar a un invitado acredita su saldo y descuenta el presupuesto del evento.
func TestAwardEvent_InvitadoUnico(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	guest := seedUser(s, "est-001", entity.RoleRegular, 0)
	event := seedEvent(s, "Feria de clubes", 1000, true)
	s.guests[event.ID] = []string{guest.ID}

	created, err := newLedger(s).AwardEvent(context.Background(), ledger.EventAwardInput{
		ActorID:    manager.ID,
		EventID:    event.ID,
		ExternalID: guest.ExternalID,
		Amount:     fptr(250),
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	assert.Equal(t, entity.TxEvent, created[0].Type)
	assert.Equal(t, 250, s.users[guest.ID].Points)
	assert.Equal(t, 750, s.events[event.ID].PointsRemain)
	assert.Equal(t, 250, s.events[event.ID].PointsAwarded)
	require.NotNil(t, created[0].RelatedID)
	assert.Equal(t, event.ID, *created[0].RelatedID)
}

// Sin external_id se premia a todos los invitados en un solo lote.
func TestAwardEvent_TodosLosInvitados(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	event := seedEvent(s, "Hackatón", 1000, true)
	for _, ext := range []string{"est-001", "est-002", "est-003"} {
		g := seedUser(s, ext, entity.RoleRegular, 0)
		s.guests[event.ID] = append(s.guests[event.ID], g.ID)
	}

	created, err := newLedger(s).AwardEvent(context.Background(), ledger.EventAwardInput{
		ActorID: manager.ID,
		EventID: event.ID,
		Amount:  fptr(200),
	})
	require.NoError(t, err)
	assert.Len(t, created, 3)
	assert.Equal(t, 400, s.events[event.ID].PointsRemain, "se descuentan 3x200")
	for _, tx := range created {
		assert.Equal(t, 200, s.users[tx.UserID].Points)
	}
}

// El lote es atómico: si el presupuesto no alcanza para todos, nadie recibe.
func TestAwardEvent_PresupuestoInsuficiente(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	event := seedEvent(s, "Torneo", 100, true)
	for _, ext := range []string{"est-001", "est-002"} {
		g := seedUser(s, ext, entity.RoleRegular, 0)
		s.guests[event.ID] = append(s.guests[event.ID], g.ID)
	}

	_, err := newLedger(s).AwardEvent(context.Background(), ledger.EventAwardInput{
		ActorID: manager.ID,
		EventID: event.ID,
		Amount:  fptr(80), // 2x80 = 160 > 100
	})
	assert.ErrorIs(t, err, domain.ErrEventBudgetExceeded)
	assert.Equal(t, 100, s.events[event.ID].PointsRemain, "el presupuesto no debe tocarse")
}

func TestAwardEvent_NoInvitado(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	outsider := seedUser(s, "est-009", entity.RoleRegular, 0)
	event := seedEvent(s, "Feria", 500, true)

	_, err := newLedger(s).AwardEvent(context.Background(), ledger.EventAwardInput{
		ActorID:    manager.ID,
		EventID:    event.ID,
		ExternalID: outsider.ExternalID,
		Amount:     fptr(50),
	})
	assert.ErrorIs(t, err, domain.ErrNotGuest)
}

func TestAwardEvent_EventoTerminado(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	guest := seedUser(s, "est-001", entity.RoleRegular, 0)
	event := seedEvent(s, "Feria pasada", 500, true)
	s.events[event.ID].EndTime = testNow.Add(-time.Minute)
	s.guests[event.ID] = []string{guest.ID}

	_, err := newLedger(s).AwardEvent(context.Background(), ledger.EventAwardInput{
		ActorID:    manager.ID,
		EventID:    event.ID,
		ExternalID: guest.ExternalID,
		Amount:     fptr(50),
	})
	assert.ErrorIs(t, err, domain.ErrEventEnded)
}

// Un organizador solo puede premiar si el evento está publicado.
func TestAwardEvent_OrganizadorEnNoPublicado(t *testing.T) {
	s := newMemStore()
	organizer := seedUser(s, "est-010", entity.RoleRegular, 0)
	guest := seedUser(s, "est-001", entity.RoleRegular, 0)
	event := seedEvent(s, "Evento borrador", 500, false)
	s.organizers[key(event.ID, organizer.ID)] = true
	s.guests[event.ID] = []string{guest.ID}

	_, err := newLedger(s).AwardEvent(context.Background(), ledger.EventAwardInput{
		ActorID:    organizer.ID,
		EventID:    event.ID,
		ExternalID: guest.ExternalID,
		Amount:     fptr(50),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Suspicious toggle
// ──────────────────────────────────────────────────────────────────────────────

// Marcar sospechosa retira el efecto de la transacción sobre el saldo.
func TestSetSuspicious_MarcarRetiraEfecto(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	buyer := seedUser(s, "est-001", entity.RoleRegular, 0)
	uc := newLedger(s)

	spent := dec("40")
	tx, err := uc.Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:    cashier.ID,
		ExternalID: buyer.ExternalID,
		Spent:      &spent,
	})
	require.NoError(t, err)
	require.Equal(t, 160, s.users[buyer.ID].Points)

	marked, err := uc.SetSuspicious(context.Background(), manager.ID, tx.ID, true)
	require.NoError(t, err)

	assert.True(t, marked.Suspicious)
	assert.Equal(t, 0, s.users[buyer.ID].Points, "el crédito se revierte al marcar")
}

// Desmarcar una compra retenida (creada por cajero sospechoso) libera el crédito.
func TestSetSuspicious_DesmarcarLiberaRetenida(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	s.users[cashier.ID].Suspicious = true
	buyer := seedUser(s, "est-001", entity.RoleRegular, 0)
	uc := newLedger(s)

	spent := dec("40")
	tx, err := uc.Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:    cashier.ID,
		ExternalID: buyer.ExternalID,
		Spent:      &spent,
	})
	require.NoError(t, err)
	require.Equal(t, 0, s.users[buyer.ID].Points)

	unmarked, err := uc.SetSuspicious(context.Background(), manager.ID, tx.ID, false)
	require.NoError(t, err)

	assert.False(t, unmarked.Suspicious)
	assert.Equal(t, 160, s.users[buyer.ID].Points, "al desmarcar se acredita el efecto retenido")
}

// Pedir el estado en el que ya está es un no-op: el saldo no se toca dos veces.
func TestSetSuspicious_MismoEstado_NoOp(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	buyer := seedUser(s, "est-001", entity.RoleRegular, 0)
	uc := newLedger(s)

	spent := dec("40")
	tx, err := uc.Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:    cashier.ID,
		ExternalID: buyer.ExternalID,
		Spent:      &spent,
	})
	require.NoError(t, err)

	_, err = uc.SetSuspicious(context.Background(), manager.ID, tx.ID, true)
	require.NoError(t, err)
	require.Equal(t, 0, s.users[buyer.ID].Points)

	_, err = uc.SetSuspicious(context.Background(), manager.ID, tx.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 0, s.users[buyer.ID].Points, "marcar dos veces no debe debitar dos veces")
}

// Una redención pendiente nunca afectó el saldo: no puede marcarse.
func TestSetSuspicious_RedencionPendiente_Rechazada(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	user := seedUser(s, "est-001", entity.RoleRegular, 300)
	uc := newLedger(s)

	pending, err := uc.RequestRedemption(context.Background(), ledger.RedemptionInput{UserID: user.ID, Amount: fptr(100)})
	require.NoError(t, err)

	_, err = uc.SetSuspicious(context.Background(), manager.ID, pending.ID, true)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// Si el usuario ya gastó los puntos de la compra, marcarla sospechosa no puede
// dejar el saldo negativo: la operación falla como regla de negocio, no con un
// error interno.
func TestSetSuspicious_SaldoYaGastado_Rechazado(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	buyer := seedUser(s, "est-001", entity.RoleRegular, 0)
	uc := newLedger(s)

	spent := dec("40")
	tx, err := uc.Purchase(context.Background(), ledger.PurchaseInput{
		ActorID:    cashier.ID,
		ExternalID: buyer.ExternalID,
		Spent:      &spent,
	})
	require.NoError(t, err)

	s.users[buyer.ID].Points = 50 // ya gastó 110 de los 160 acreditados

	_, err = uc.SetSuspicious(context.Background(), manager.ID, tx.ID, true)
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)
	assert.False(t, s.txs[tx.ID].Suspicious, "la marca no debe aplicarse a medias")
	assert.Equal(t, 50, s.users[buyer.ID].Points)
}

func TestSetSuspicious_ActorCajero_Prohibido(t *testing.T) {
	s := newMemStore()
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)

	_, err := newLedger(s).SetSuspicious(context.Background(), cashier.ID, uuid.New().String(), true)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjustment
// ──────────────────────────────────────────────────────────────────────────────

// Un ajuste negativo debita de inmediato y queda procesado por el actor.
func TestAdjustment_NegativoDebita(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	user := seedUser(s, "est-001", entity.RoleRegular, 200)

	tx, err := newLedger(s).Adjustment(context.Background(), ledger.AdjustmentInput{
		ActorID:    manager.ID,
		ExternalID: user.ExternalID,
		Amount:     fptr(-50),
		Remark:     "corrección de compra duplicada",
	})
	require.NoError(t, err)

	assert.Equal(t, -50, tx.Amount)
	require.NotNil(t, tx.ProcessedBy)
	assert.Equal(t, manager.ID, *tx.ProcessedBy)
	assert.Equal(t, 150, s.users[user.ID].Points)
}

// Un ajuste negativo mayor que el saldo no puede dejarlo bajo cero.
func TestAdjustment_NegativoMayorQueSaldo_Rechazado(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	user := seedUser(s, "est-001", entity.RoleRegular, 200)

	_, err := newLedger(s).Adjustment(context.Background(), ledger.AdjustmentInput{
		ActorID:    manager.ID,
		ExternalID: user.ExternalID,
		Amount:     fptr(-300),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientPoints)
	assert.Equal(t, 200, s.users[user.ID].Points, "el saldo no debe cambiar")
}

func TestAdjustment_ActorCajero_Prohibido(t *testing.T) {
	s := newMemStore()
	cashier := seedUser(s, "caja-01", entity.RoleCashier, 0)
	user := seedUser(s, "est-001", entity.RoleRegular, 200)

	_, err := newLedger(s).Adjustment(context.Background(), ledger.AdjustmentInput{
		ActorID:    cashier.ID,
		ExternalID: user.ExternalID,
		Amount:     fptr(-50),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// related_id debe referenciar una transacción del mismo usuario.
func TestAdjustment_RelatedDeOtroUsuario_Rechazado(t *testing.T) {
	s := newMemStore()
	manager := seedUser(s, "mgr-01", entity.RoleManager, 0)
	user := seedUser(s, "est-001", entity.RoleRegular, 200)
	other := seedUser(s, "est-002", entity.RoleRegular, 200)
	uc := newLedger(s)

	foreign, err := uc.RequestRedemption(context.Background(), ledger.RedemptionInput{UserID: other.ID, Amount: fptr(10)})
	require.NoError(t, err)

	_, err = uc.Adjustment(context.Background(), ledger.AdjustmentInput{
		ActorID:    manager.ID,
		ExternalID: user.ExternalID,
		Amount:     fptr(-10),
		RelatedID:  &foreign.ID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func intPtr(i int) *int { return &i }
