package postcommit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_FailuresAreIsolated(t *testing.T) {
	var ran []string
	results := Run(context.Background(),
		Task{Name: "balance", Fn: func(ctx context.Context) error {
			ran = append(ran, "balance")
			return errors.New("db down")
		}},
		Task{Name: "salary", Fn: func(ctx context.Context) error {
			ran = append(ran, "salary")
			panic("boom")
		}},
		Task{Name: "notify", Fn: func(ctx context.Context) error {
			ran = append(ran, "notify")
			return nil
		}},
	)

	assert.Equal(t, []string{"balance", "salary", "notify"}, ran)
	require.Len(t, results, 3)
	assert.EqualError(t, results[0].Err, "db down")
	assert.EqualError(t, results[1].Err, "panic: boom")
	assert.NoError(t, results[2].Err)
}
