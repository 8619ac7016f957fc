package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codegraph/internal/analysis"
	"codegraph/internal/config"
	"codegraph/internal/index"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 3, exitCode(fmt.Errorf("load: %w", analysis.ErrNoGraph)))
	assert.Equal(t, 2, exitCode(analysis.ErrEmptyQuery))
	assert.Equal(t, 2, exitCode(analysis.ErrInputTooLarge))
	assert.Equal(t, 4, exitCode(analysis.ErrAccessDenied))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestBuildSources(t *testing.T) {
	cfg = config.Default()
	cfg.Extractors = []config.Extractor{
		{Name: "py", Language: "python"},
		{Name: "custom", Command: []string{"my-extractor", "--root", "{root}"}},
	}

	sources, err := buildSources("/work/proj")
	require.NoError(t, err)
	require.Len(t, sources, 2)

	_, ok := sources[0].(*index.InProcessSource)
	assert.True(t, ok)
	assert.Equal(t, "custom", sources[1].Name())

	cfg.Extractors = []config.Extractor{{Name: "rb", Language: "ruby"}}
	_, err = buildSources("/work/proj")
	assert.Error(t, err)
}
