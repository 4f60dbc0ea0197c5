package tasks_test

import (
	"encoding/json"
	"testing"

	"github.com/solenhq/teamgate/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerificationEmailTask(t *testing.T) {
	task, err := tasks.NewVerificationEmailTask(tasks.EmailCodePayload{
		Email: "ada@example.com",
		Code:  "123456",
	})
	require.NoError(t, err)
	assert.Equal(t, tasks.TypeVerificationEmail, task.Type())

	var payload tasks.EmailCodePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "ada@example.com", payload.Email)
	assert.Equal(t, "123456", payload.Code)
}

func TestNewLoginOTPEmailTask(t *testing.T) {
	task, err := tasks.NewLoginOTPEmailTask(tasks.EmailCodePayload{
		Email: "ada@example.com",
		Code:  "654321",
	})
	require.NoError(t, err)
	assert.Equal(t, tasks.TypeLoginOTPEmail, task.Type())

	var payload tasks.EmailCodePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "654321", payload.Code)
}
