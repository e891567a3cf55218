package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tradeSync/internal/domain"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(domain.MutationAttemptResult{Outcome: domain.OutcomeSuccess}))
	assert.Equal(t, exitPrecondition, exitCode(domain.MutationAttemptResult{Outcome: domain.OutcomePreconditionFailed}))
	assert.Equal(t, exitFailed, exitCode(domain.MutationAttemptResult{Outcome: domain.OutcomeTransportError}))
	assert.Equal(t, exitFailed, exitCode(domain.MutationAttemptResult{Outcome: domain.OutcomeRemoteFailure}))
}
