package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEngagement_ConfirmAgreement(t *testing.T) {
	now := time.Now()

	e := &Engagement{State: EngagementContacted}
	err := e.ConfirmAgreement(now)
	assert.NoError(t, err)
	assert.Equal(t, EngagementConfirmed, e.State)
	assert.True(t, e.AgreementConfirmed)
	assert.NotNil(t, e.AgreementConfirmedAt)

	for _, state := range []string{EngagementConfirmed, EngagementInProgress, EngagementFinalized, EngagementCancelled} {
		e := &Engagement{State: state}
		assert.Error(t, e.ConfirmAgreement(now), "estado %s", state)
	}
}

func TestEngagement_StartWork(t *testing.T) {
	e := &Engagement{State: EngagementConfirmed}
	assert.NoError(t, e.StartWork())
	assert.Equal(t, EngagementInProgress, e.State)

	for _, state := range []string{EngagementContacted, EngagementInProgress, EngagementFinalized, EngagementCancelled} {
		e := &Engagement{State: state}
		assert.Error(t, e.StartWork(), "estado %s", state)
	}
}

func TestEngagement_Finalize(t *testing.T) {
	now := time.Now()

	for _, state := range []string{EngagementConfirmed, EngagementInProgress} {
		e := &Engagement{State: state}
		assert.NoError(t, e.Finalize(now), "estado %s", state)
		assert.Equal(t, EngagementFinalized, e.State)
		assert.NotNil(t, e.FinalizedAt)
	}

	// Finalizar dos veces reporta el conflicto específico.
	e := &Engagement{State: EngagementFinalized}
	err := e.Finalize(now)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ya se encuentra finalizado")

	for _, state := range []string{EngagementContacted, EngagementCancelled} {
		e := &Engagement{State: state}
		assert.Error(t, e.Finalize(now), "estado %s", state)
	}
}

func TestEngagement_Cancel(t *testing.T) {
	for _, state := range []string{EngagementContacted, EngagementConfirmed, EngagementInProgress} {
		e := &Engagement{State: state}
		assert.NoError(t, e.Cancel(), "estado %s", state)
		assert.Equal(t, EngagementCancelled, e.State)
	}

	for _, state := range []string{EngagementFinalized, EngagementCancelled} {
		e := &Engagement{State: state}
		assert.Error(t, e.Cancel(), "estado %s", state)
	}
}

func TestEngagement_ConfirmDoneByClient_Idempotent(t *testing.T) {
	first := time.Now()
	e := &Engagement{State: EngagementFinalized}

	e.ConfirmDoneByClient(first)
	assert.True(t, e.ClientConfirmedDone)
	assert.Equal(t, first, *e.ClientConfirmedDoneAt)

	// Repetir conserva la marca de tiempo original.
	e.ConfirmDoneByClient(first.Add(time.Hour))
	assert.Equal(t, first, *e.ClientConfirmedDoneAt)
}

func TestEngagement_Participants(t *testing.T) {
	clientID := uuid.New()
	providerID := uuid.New()
	e := &Engagement{ClientID: clientID, ProviderID: providerID}

	assert.True(t, e.HasClient(clientID))
	assert.False(t, e.HasClient(providerID))
	assert.True(t, e.HasParticipant(providerID))
	assert.False(t, e.HasParticipant(uuid.New()))
	assert.Equal(t, providerID, e.CounterpartOf(clientID))
	assert.Equal(t, clientID, e.CounterpartOf(providerID))
}
