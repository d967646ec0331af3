package review

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDimensionScoreUnmarshalSentinel(t *testing.T) {
	var score DimensionScore
	require.NoError(t, json.Unmarshal([]byte("-1"), &score))
	require.False(t, score.Applicable)
	require.Zero(t, score.Score)

	require.NoError(t, json.Unmarshal([]byte("0"), &score))
	require.True(t, score.Applicable)
	require.Zero(t, score.Score)

	require.NoError(t, json.Unmarshal([]byte("100"), &score))
	require.True(t, score.Applicable)
	require.Equal(t, 100, score.Score)
}

func TestDimensionScoreUnmarshalRejectsOutOfRange(t *testing.T) {
	var score DimensionScore
	require.Error(t, json.Unmarshal([]byte("-2"), &score))
	require.Error(t, json.Unmarshal([]byte("101"), &score))
	require.Error(t, json.Unmarshal([]byte(`"high"`), &score))
}

func TestDimensionScoreMarshalRoundTrip(t *testing.T) {
	applicable, err := json.Marshal(DimensionScore{Score: 73, Applicable: true})
	require.NoError(t, err)
	require.Equal(t, "73", string(applicable))

	sentinel, err := json.Marshal(DimensionScore{Score: 73, Applicable: false})
	require.NoError(t, err)
	require.Equal(t, "-1", string(sentinel))
}

func TestReviewMarshalOmitsAbsentCapabilities(t *testing.T) {
	payload, err := json.Marshal(Review{OverallScore: 50, Feedback: "ok"})
	require.NoError(t, err)
	require.NotContains(t, string(payload), "capabilityScores")
}
