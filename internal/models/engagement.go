package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/easyhome-app/easyhome-backend/internal/pkg/apperror"
)

// Estados del ciclo de vida de un servicio contratado.
const (
	EngagementContacted  = "contactado"
	EngagementConfirmed  = "confirmado"
	EngagementInProgress = "en_proceso"
	EngagementFinalized  = "finalizado"
	EngagementCancelled  = "cancelado"
)

// Engagement representa el proceso de contratación entre un cliente y un
// proveedor, opcionalmente originado en una publicación.
type Engagement struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	ClientID               uuid.UUID  `db:"client_id" json:"client_id"`
	ProviderID             uuid.UUID  `db:"provider_id" json:"provider_id"`
	ListingID              *uuid.UUID `db:"listing_id" json:"listing_id,omitempty"`
	State                  string     `db:"state" json:"state"`
	AgreementConfirmed     bool       `db:"agreement_confirmed" json:"agreement_confirmed"`
	ContactedAt            time.Time  `db:"contacted_at" json:"contacted_at"`
	AgreementConfirmedAt   *time.Time `db:"agreement_confirmed_at" json:"agreement_confirmed_at,omitempty"`
	FinalizedAt            *time.Time `db:"finalized_at" json:"finalized_at,omitempty"`
	ClientConfirmedDone    bool       `db:"client_confirmed_done" json:"client_confirmed_done"`
	ClientConfirmedDoneAt  *time.Time `db:"client_confirmed_done_at" json:"client_confirmed_done_at,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

// IsTerminal indica si el estado actual no admite más transiciones.
func (e *Engagement) IsTerminal() bool {
	return e.State == EngagementFinalized || e.State == EngagementCancelled
}

// IsActive indica si el servicio sigue en curso para el panel del proveedor.
func (e *Engagement) IsActive() bool {
	return e.State == EngagementConfirmed || e.State == EngagementInProgress
}

// HasClient verifica que el usuario sea el cliente del servicio.
func (e *Engagement) HasClient(userID uuid.UUID) bool {
	return e.ClientID == userID
}

// HasProvider verifica que el usuario sea el proveedor del servicio.
func (e *Engagement) HasProvider(userID uuid.UUID) bool {
	return e.ProviderID == userID
}

// HasParticipant verifica que el usuario sea parte del servicio.
func (e *Engagement) HasParticipant(userID uuid.UUID) bool {
	return e.HasClient(userID) || e.HasProvider(userID)
}

// CounterpartOf devuelve la otra parte del servicio.
func (e *Engagement) CounterpartOf(userID uuid.UUID) uuid.UUID {
	if e.ClientID == userID {
		return e.ProviderID
	}
	return e.ClientID
}

// ConfirmAgreement registra el acuerdo exitoso: contactado -> confirmado.
func (e *Engagement) ConfirmAgreement(now time.Time) error {
	if e.State != EngagementContacted {
		return stateConflict("confirmar", e.State)
	}
	e.State = EngagementConfirmed
	e.AgreementConfirmed = true
	e.AgreementConfirmedAt = &now
	return nil
}

// StartWork marca el inicio del trabajo: confirmado -> en_proceso.
func (e *Engagement) StartWork() error {
	if e.State != EngagementConfirmed {
		return stateConflict("iniciar", e.State)
	}
	e.State = EngagementInProgress
	return nil
}

// Finalize marca el servicio como finalizado: confirmado|en_proceso -> finalizado.
func (e *Engagement) Finalize(now time.Time) error {
	if e.State == EngagementFinalized {
		return apperror.New(apperror.ErrCodeConflict, "el servicio ya se encuentra finalizado")
	}
	if !e.IsActive() {
		return stateConflict("finalizar", e.State)
	}
	e.State = EngagementFinalized
	e.FinalizedAt = &now
	return nil
}

// Cancel cancela el servicio desde cualquier estado no terminal.
func (e *Engagement) Cancel() error {
	if e.IsTerminal() {
		return stateConflict("cancelar", e.State)
	}
	e.State = EngagementCancelled
	return nil
}

// ConfirmDoneByClient registra la confirmación del cliente sin cambiar el estado.
func (e *Engagement) ConfirmDoneByClient(now time.Time) {
	if e.ClientConfirmedDone {
		return
	}
	e.ClientConfirmedDone = true
	e.ClientConfirmedDoneAt = &now
}

func stateConflict(action, state string) error {
	return apperror.New(apperror.ErrCodeConflict,
		fmt.Sprintf("no se puede %s un servicio en estado '%s'", action, state))
}
