package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterviewJSONCarriesLegacyID(t *testing.T) {
	b, err := json.Marshal(Interview{InterviewID: "iv-1", UserID: "u1", Conversation: []Turn{}})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "iv-1", got["id"])
	assert.Equal(t, "iv-1", got["_id"])
	assert.Equal(t, "u1", got["user"])
	assert.Contains(t, got, "createdAt")

	var back Interview
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "iv-1", back.InterviewID)
}
