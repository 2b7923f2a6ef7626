package sim

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/mlfq-sim/sim/internal/testutil"
)

func TestProcess_Validate_Invalid_ReturnsValidationError(t *testing.T) {
	neg := -1
	tests := []struct {
		name  string
		p     Process
		field string
	}{
		{"empty pid", Process{BurstTime: 1}, "pid"},
		{"negative arrival", Process{PID: "P1", ArrivalTime: -1, BurstTime: 1}, "arrival_time"},
		{"zero burst", Process{PID: "P1", BurstTime: 0}, "burst_time"},
		{"negative burst", Process{PID: "P1", BurstTime: -3}, "burst_time"},
		{"negative io_time", Process{PID: "P1", BurstTime: 1, IOTime: testutil.Int64Ptr(-1)}, "io_time"},
		{"zero io_interval", Process{PID: "P1", BurstTime: 1, IOInterval: testutil.Int64Ptr(0)}, "io_interval"},
		{"negative priority", Process{PID: "P1", BurstTime: 1, Priority: &neg}, "priority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate(4)
			var valErr *ValidationError
			require.True(t, errors.As(err, &valErr), "got %v", err)
			assert.Equal(t, tt.field, valErr.Field)
			assert.Equal(t, 4, valErr.Index)
		})
	}
}

func TestValidateProcesses_Empty_Rejected(t *testing.T) {
	err := ValidateProcesses(nil)
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.True(t, errors.Is(err, ErrNoProcesses))
}

func TestValidateProcesses_DuplicatePID_Rejected(t *testing.T) {
	err := ValidateProcesses([]Process{
		{PID: "A", BurstTime: 1},
		{PID: "B", BurstTime: 1},
		{PID: "A", BurstTime: 2},
	})
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "A", valErr.PID)
	assert.Equal(t, 2, valErr.Index)
	assert.True(t, strings.Contains(valErr.Error(), "duplicate of process #0"), valErr.Error())
}

func TestValidateProcesses_FirstFailureWins(t *testing.T) {
	err := ValidateProcesses([]Process{
		{PID: "ok", BurstTime: 1},
		{PID: "bad1", BurstTime: 0},
		{PID: "bad2", ArrivalTime: -5, BurstTime: 1},
	})
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "bad1", valErr.PID)
}

func TestNewProcessState_InitialState(t *testing.T) {
	prio := 2
	ps := NewProcessState(Process{PID: "P1", ArrivalTime: 3, BurstTime: 7, Priority: &prio})
	assert.Equal(t, StatusReady, ps.State)
	assert.Equal(t, 0, ps.Queue)
	assert.Equal(t, int64(7), ps.RemainingTime)
	assert.False(t, ps.Arrived)
	assert.False(t, ps.Started)
	assert.NotNil(t, ps.ExecutionLog)
	assert.Empty(t, ps.ExecutionLog)
	assert.Equal(t, int64(0), ps.IOTime)
	require.NotNil(t, ps.Priority)
	prio = 9
	assert.Equal(t, 2, *ps.Priority, "priority must be copied")
}

func TestNewProcessState_IOIntervalDefaultsToOne(t *testing.T) {
	ps := NewProcessState(Process{PID: "P1", BurstTime: 5, IOTime: testutil.Int64Ptr(2)})
	assert.Equal(t, int64(2), ps.IOTime)
	assert.Equal(t, int64(1), ps.IOInterval)

	cpuBound := NewProcessState(Process{PID: "P2", BurstTime: 5, IOTime: testutil.Int64Ptr(0), IOInterval: testutil.Int64Ptr(3)})
	assert.Equal(t, int64(0), cpuBound.IOInterval, "io_interval is ignored without io_time")
}

func TestProcessState_CloseSegment_SkipsEmptyInterval(t *testing.T) {
	ps := NewProcessState(Process{PID: "P1", BurstTime: 5})
	ps.segmentStart = 4
	ps.QuantumUsed = 2
	ps.closeSegment(4)
	assert.Empty(t, ps.ExecutionLog)
	assert.Equal(t, int64(0), ps.QuantumUsed)

	ps.Queue = 1
	ps.closeSegment(6)
	assert.Equal(t, []ExecutionInterval{{StartTime: 4, EndTime: 6, Queue: 1}}, ps.ExecutionLog)
	assert.Equal(t, int64(2), ps.ExecutedTime())
}

func TestProcessState_Clone_DeepCopiesLog(t *testing.T) {
	ps := NewProcessState(Process{PID: "P1", BurstTime: 5})
	ps.ExecutionLog = append(ps.ExecutionLog, ExecutionInterval{StartTime: 0, EndTime: 2})
	cp := ps.Clone()
	ps.ExecutionLog[0].EndTime = 99
	assert.Equal(t, int64(2), cp.ExecutionLog[0].EndTime)
}
