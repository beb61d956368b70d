package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	var s struct {
		V Duration `json:"v"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"v":"3s"}`), &s))
	require.Equal(t, 3*time.Second, s.V.Duration)

	require.NoError(t, json.Unmarshal([]byte(`{"v":1000000000}`), &s))
	require.Equal(t, time.Second, s.V.Duration)

	require.Error(t, json.Unmarshal([]byte(`{"v":"bogus"}`), &s))
	require.Error(t, json.Unmarshal([]byte(`{"v":true}`), &s))
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{2 * time.Minute})
	require.NoError(t, err)
	require.JSONEq(t, `"2m0s"`, string(b))
}
