package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"studyhub/internal/model"
)

func TestMachine_Transitions(t *testing.T) {
	m := Machine{Phase: PhaseIdle}

	assert.NoError(t, m.Transition(PhaseLoading))
	assert.NoError(t, m.Transition(PhaseReady))
	assert.NoError(t, m.Transition(PhaseResolving))
	assert.NoError(t, m.Transition(PhaseReady))
	assert.NoError(t, m.Transition(PhaseResolving))
	assert.NoError(t, m.Transition(PhaseScored))
	assert.Equal(t, PhaseScored, m.Phase)
}

func TestMachine_RejectsIllegalEdges(t *testing.T) {
	tests := []struct {
		from, to Phase
	}{
		{PhaseIdle, PhaseReady},
		{PhaseIdle, PhaseScored},
		{PhaseLoading, PhaseResolving},
		{PhaseReady, PhaseLoading},
		{PhaseScored, PhaseLoading},
		{PhaseScored, PhaseReady},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := Machine{Phase: tt.from}

			err := m.Transition(tt.to)

			assert.True(t, errors.Is(err, model.ErrInvalidTransition))
			assert.Equal(t, tt.from, m.Phase)
		})
	}
}

func TestMachine_LoadingFailureReturnsToIdle(t *testing.T) {
	m := Machine{Phase: PhaseLoading}
	assert.NoError(t, m.Transition(PhaseIdle))
	assert.NoError(t, m.Transition(PhaseLoading))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("quiz")
	assert.NoError(t, err)
	assert.Equal(t, KindQuiz, k)

	_, err = ParseKind("chess")
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))
}
