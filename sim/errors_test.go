package sim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_MessagesNameTheOffender(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ConfigError{Field: "num_queues", Reason: "must be >= 1, got 0"}, "config error: num_queues: must be >= 1, got 0"},
		{&ConfigError{Reason: "simulation not configured"}, "config error: simulation not configured"},
		{&ValidationError{PID: "P1", Index: 0, Field: "burst_time", Reason: "must be > 0, got 0"}, `validation error: process "P1": burst_time: must be > 0, got 0`},
		{&ValidationError{Index: 3, Field: "pid", Reason: "must not be empty"}, "validation error: process #3: pid: must not be empty"},
		{&ValidationError{Index: -1, Reason: "process list must not be empty"}, "validation error: process list must not be empty"},
		{&InvalidLevelError{Level: 3, NumQueues: 3}, "invalid queue level 3 (num_queues=3)"},
		{&IncompleteSimulationError{Clock: 7, Unfinished: 2}, "simulation incomplete at tick 7: 2 process(es) not finished"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestNewErrorDetail(t *testing.T) {
	wrapped := fmt.Errorf("run: %w", &IncompleteSimulationError{Clock: 4, Unfinished: 1})
	assert.Equal(t, "not ready yet: 1 process(es) still running at tick 4", NewErrorDetail(wrapped).Detail)

	plain := &ConfigError{Field: "time_slice", Reason: "is required"}
	assert.Equal(t, plain.Error(), NewErrorDetail(plain).Detail)
}

func TestConfigError_Unwrap(t *testing.T) {
	err := &ConfigError{Reason: ErrNotConfigured.Error(), Err: ErrNotConfigured}
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
