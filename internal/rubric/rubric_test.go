// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rubric

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, float64(90), r.TargetPassScore)
	assert.NotEmpty(t, r.Criteria)
	assert.NotEmpty(t, r.JudgeInstructions)
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading rubric")
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rubric.yaml")
	content := `target_pass_score: 85
judge_instructions: "score it"
criteria:
  - name: pacing
    weight: 0.6
    description: "speed of events"
    levels:
      "0-50": "slow"
      "51-100": "fast"
  - name: clarity
    weight: 0.4
    description: "easy to follow"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float64(85), r.TargetPassScore)
	require.Len(t, r.Criteria, 2)
	assert.Equal(t, "pacing", r.Criteria[0].Name)
	assert.Equal(t, "slow", r.Criteria[0].Levels["0-50"])
}

func TestLoadDefaultsPassScore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rubric.yaml")
	content := `criteria:
  - name: only
    weight: 1.0
    description: "d"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float64(90), r.TargetPassScore)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		rubric Rubric
		errMsg string
	}{
		{
			name:   "no criteria",
			rubric: Rubric{},
			errMsg: "no criteria",
		},
		{
			name: "unnamed criterion",
			rubric: Rubric{Criteria: []Criterion{
				{Weight: 1},
			}},
			errMsg: "missing name",
		},
		{
			name: "non-positive weight",
			rubric: Rubric{Criteria: []Criterion{
				{Name: "x", Weight: 0},
			}},
			errMsg: "weight must be positive",
		},
		{
			name: "pass score out of range",
			rubric: Rubric{
				TargetPassScore: 120,
				Criteria:        []Criterion{{Name: "x", Weight: 1}},
			},
			errMsg: "outside [0,100]",
		},
		{
			name: "valid",
			rubric: Rubric{
				TargetPassScore: 90,
				Criteria:        []Criterion{{Name: "x", Weight: 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rubric.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
